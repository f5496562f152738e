// Package catalog holds the static ticker reference data: company-name
// expansions and category groupings. The tables are read-only
// configuration loaded at startup, not computed.
package catalog

import (
	"sort"
	"strings"
)

// companyNames maps normalized tickers to company-name variations used
// for query expansion. Expanded queries capture several times more
// mentions than ticker-only searches.
var companyNames = map[string][]string{
	// EV / Electric Vehicles
	"TSLA": {"Tesla"},
	"RIVN": {"Rivian"},
	"LCID": {"Lucid", "Lucid Motors"},
	"NIO":  {"NIO"},
	"XPEV": {"XPeng"},

	// Big Tech / FAANG
	"AAPL":  {"Apple"},
	"GOOGL": {"Google", "Alphabet"},
	"GOOG":  {"Google", "Alphabet"},
	"MSFT":  {"Microsoft"},
	"AMZN":  {"Amazon"},
	"META":  {"Meta", "Facebook"},
	"NFLX":  {"Netflix"},

	// AI / Semiconductors
	"NVDA": {"NVIDIA", "Nvidia"},
	"AMD":  {"AMD", "Advanced Micro Devices"},
	"INTC": {"Intel"},
	"AVGO": {"Broadcom"},
	"QCOM": {"Qualcomm"},
	"TSM":  {"TSMC", "Taiwan Semiconductor"},

	// Crypto
	"BTC":   {"Bitcoin"},
	"ETH":   {"Ethereum"},
	"SOL":   {"Solana"},
	"DOGE":  {"Dogecoin"},
	"XRP":   {"Ripple", "XRP"},
	"ADA":   {"Cardano"},
	"MATIC": {"Polygon"},
	"DOT":   {"Polkadot"},
	"AVAX":  {"Avalanche"},
	"LINK":  {"Chainlink"},
	"UNI":   {"Uniswap"},
	"SHIB":  {"Shiba Inu", "Shib"},

	// Crypto-related stocks
	"MSTR": {"MicroStrategy"},
	"COIN": {"Coinbase"},
	"MARA": {"Marathon Digital"},
	"RIOT": {"Riot Platforms", "Riot Blockchain"},
	"HUT":  {"Hut 8"},
	"CLSK": {"CleanSpark"},

	// Meme Stocks
	"GME":  {"GameStop"},
	"AMC":  {"AMC Entertainment", "AMC Theatres"},
	"BBBY": {"Bed Bath Beyond"},
	"BB":   {"BlackBerry"},
	"NOK":  {"Nokia"},

	// Fintech
	"SQ":   {"Square", "Block"},
	"PYPL": {"PayPal"},
	"SOFI": {"SoFi"},
	"HOOD": {"Robinhood"},
	"AFRM": {"Affirm"},

	// Biotech
	"MRNA": {"Moderna"},
	"BNTX": {"BioNTech"},
	"PFE":  {"Pfizer"},
	"JNJ":  {"Johnson Johnson", "J&J"},
	"ABBV": {"AbbVie"},

	// Airlines
	"UAL":  {"United Airlines"},
	"DAL":  {"Delta Airlines", "Delta Air"},
	"AAL":  {"American Airlines"},
	"LUV":  {"Southwest Airlines"},
	"JBLU": {"JetBlue"},

	// Retail
	"WMT":  {"Walmart"},
	"TGT":  {"Target"},
	"COST": {"Costco"},
	"HD":   {"Home Depot"},
	"LOW":  {"Lowe's", "Lowes"},

	// Energy
	"XOM": {"Exxon", "ExxonMobil"},
	"CVX": {"Chevron"},
	"OXY": {"Occidental"},
	"SLB": {"Schlumberger"},
	"COP": {"ConocoPhillips"},

	// Banks
	"JPM": {"JPMorgan", "Chase"},
	"BAC": {"Bank of America", "BofA"},
	"GS":  {"Goldman Sachs"},
	"MS":  {"Morgan Stanley"},
	"C":   {"Citigroup", "Citi"},
	"WFC": {"Wells Fargo"},
}

// categoryTickers maps category names to member tickers.
var categoryTickers = map[string][]string{
	"EV / Electric Vehicles": {"TSLA", "RIVN", "LCID", "NIO", "XPEV"},
	"Big Tech / FAANG":       {"AAPL", "GOOGL", "MSFT", "AMZN", "META"},
	"AI / Semiconductors":    {"NVDA", "AMD", "INTC", "AVGO", "QCOM"},
	"Crypto (BTC ecosystem)": {"BTC", "MSTR", "COIN", "MARA", "RIOT"},
	"Crypto (ETH ecosystem)": {"ETH", "MATIC", "ARB", "OP", "LDO"},
	"Meme Stocks":            {"GME", "AMC", "BBBY", "BB", "NOK"},
	"Fintech":                {"SQ", "PYPL", "SOFI", "HOOD", "AFRM"},
	"Biotech":                {"MRNA", "BNTX", "PFE", "JNJ", "ABBV"},
	"Airlines":               {"UAL", "DAL", "AAL", "LUV", "JBLU"},
	"Retail":                 {"WMT", "TGT", "COST", "AMZN", "HD"},
	"Energy":                 {"XOM", "CVX", "OXY", "SLB", "COP"},
	"Banks":                  {"JPM", "BAC", "GS", "MS", "C"},
}

// Normalize strips $ and # prefixes and uppercases a ticker.
func Normalize(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	t = strings.ReplaceAll(t, "$", "")
	t = strings.ReplaceAll(t, "#", "")
	return t
}

// CompanyNames returns the known company-name variations for a ticker,
// or nil when the ticker is not in the static table.
func CompanyNames(ticker string) []string {
	return companyNames[Normalize(ticker)]
}

// Category returns the category a ticker belongs to, or "" if unknown.
func Category(ticker string) string {
	t := Normalize(ticker)
	for category, tickers := range categoryTickers {
		for _, member := range tickers {
			if member == t {
				return category
			}
		}
	}
	return ""
}

// Peers returns the other tickers in the same category.
func Peers(ticker string) []string {
	category := Category(ticker)
	if category == "" {
		return nil
	}
	t := Normalize(ticker)
	var peers []string
	for _, member := range categoryTickers[category] {
		if member != t {
			peers = append(peers, member)
		}
	}
	return peers
}

// Categories returns all category names in a stable order.
func Categories() []string {
	names := make([]string, 0, len(categoryTickers))
	for name := range categoryTickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryMembers returns the tickers in a category, or nil if unknown.
func CategoryMembers(category string) []string {
	members := categoryTickers[category]
	out := make([]string, len(members))
	copy(out, members)
	if len(out) == 0 {
		return nil
	}
	return out
}

// AllTickers returns every ticker referenced by the category table, in
// a stable order, deduplicated.
func AllTickers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tickers := range categoryTickers {
		for _, t := range tickers {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ExpandQuery builds the OR-joined search query for a ticker:
// "$TSLA OR #TSLA OR TSLA OR Tesla OR #Tesla". Single-word company
// names get a hashtag variant as well.
func ExpandQuery(ticker string, names []string) string {
	t := Normalize(ticker)
	if t == "" {
		return ""
	}

	parts := []string{"$" + t, "#" + t, t}
	for _, name := range names {
		parts = append(parts, name)
		if !strings.Contains(name, " ") {
			parts = append(parts, "#"+name)
		}
	}
	return strings.Join(parts, " OR ")
}
