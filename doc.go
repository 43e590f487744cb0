// Package cartera values an investment portfolio from its trade log.
//
// The core is Compute, a stateless engine that replays buy and sell trades
// with weighted average cost accounting, keeping the cost basis both in local
// currency and in USD at the exchange rate of each trade's day. Open holdings
// are then valued with the latest quotes and the current exchange rate,
// producing per ticker positions with their unrealized, daily and realized
// P&L, and the split of the unrealized P&L between the exchange rate move and
// the price move.
//
// All amounts are exact decimals (Money, Quantity, Rate). The engine never
// fails on incomplete data: it degrades to zero values and reports the
// problems as anomalies.
//
// The package also decodes the files the engine is fed with (trades and
// exchange rates as JSONL, quotes as JSON, raw vendor documents through
// QuoteExtractor). This is where input validation and field aliases are
// handled, never in the engine.
package cartera
