package services

import "strings"

// majorSymbols excludes established tokens from meme lists regardless of name.
var majorSymbols = map[string]bool{
	"BTC": true, "ETH": true, "USDT": true, "USDC": true, "BNB": true,
	"SOL": true, "XRP": true, "ADA": true, "AVAX": true, "DOT": true,
	"LINK": true, "MATIC": true, "LTC": true, "UNI": true, "ATOM": true,
	"TRX": true, "XLM": true, "NEAR": true, "APT": true, "ARB": true,
}

// majorNameParts catches wrapped/bridged variants of majors whose symbol differs.
var majorNameParts = []string{
	"bitcoin", "ethereum", "tether", "usd coin", "binance",
	"solana", "ripple", "cardano", "chainlink", "polygon", "avalanche",
}

var memeKeywords = []string{
	"pepe", "doge", "shib", "inu", "elon", "moon", "floki", "wojak",
	"bonk", "frog", "cat", "baby", "meme", "chad", "wif", "mog",
}

// IsMemeToken classifies a token as meme. The major check always runs first
// and short-circuits: an established token never lands in a meme list even
// when its name matches a keyword.
func IsMemeToken(symbol, name string) bool {
	upperSymbol := strings.ToUpper(strings.TrimSpace(symbol))
	lowerName := strings.ToLower(name)

	if majorSymbols[upperSymbol] {
		return false
	}
	for _, part := range majorNameParts {
		if strings.Contains(lowerName, part) {
			return false
		}
	}

	lowerSymbol := strings.ToLower(upperSymbol)
	for _, keyword := range memeKeywords {
		if strings.Contains(lowerSymbol, keyword) || strings.Contains(lowerName, keyword) {
			return true
		}
	}
	return false
}
