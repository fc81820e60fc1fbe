package etforacle

import "fmt"

const marketInsightPromptTemplate = `Analyze the current state of the %s stock market.
1. Provide a concise summary of current trends and performance (based on real-time info from Yahoo Finance/Bloomberg).
2. Recommend the top 3 best-performing or most stable ETFs for this market right now.
3. For each ETF, include: Ticker, Full Name, Estimated Expense Ratio, YTD Return, and a brief investment thesis.
4. Mention if the risk level is Low, Medium, or High.
Format your response as a structured report. Use search grounding for the most recent data.`

const tickerDetailPromptTemplate = `Provide a detailed investment analysis for the ETF with ticker: %s.
Include its holdings profile, historical performance vs benchmark, and current valuation metrics.
Use real-time data search.`

// The identifier is interpolated verbatim.
func buildMarketInsightPrompt(market string) string {
	return fmt.Sprintf(marketInsightPromptTemplate, market)
}

func buildTickerDetailPrompt(ticker string) string {
	return fmt.Sprintf(tickerDetailPromptTemplate, ticker)
}

// SectorMarketIdentifier turns an analyzer sector into the market
// identifier sent to the insight client.
func SectorMarketIdentifier(sector string) string {
	return sector + " ETF Market"
}
