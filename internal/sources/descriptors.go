package sources

import (
	"time"

	"HashArb/internal/domain/models"
)

// Built-in source identifiers.
const (
	SourceWhatToMine    = "whattomine"
	SourceCoinGecko     = "coingecko"
	SourceCryptoCompare = "cryptocompare"
	SourceNiceHash      = "nicehash"
)

// Defaults returns the static source table. Priorities are per category,
// lower wins.
func Defaults() []models.SourceDescriptor {
	return []models.SourceDescriptor{
		{
			ID:        SourceWhatToMine,
			Name:      "WhatToMine",
			Category:  models.CategoryPoolProfits,
			Priority:  1,
			BaseURL:   "https://whattomine.com",
			Endpoints: []string{"/coins.json"},
			RateLimit: 60,
			Timeout:   30 * time.Second,
		},
		{
			ID:        SourceCoinGecko,
			Name:      "CoinGecko",
			Category:  models.CategoryPrices,
			Priority:  2,
			BaseURL:   "https://api.coingecko.com/api/v3",
			Endpoints: []string{"/simple/price?ids=bitcoin&vs_currencies=usd"},
			RateLimit: 50,
			Timeout:   30 * time.Second,
		},
		{
			ID:        SourceCryptoCompare,
			Name:      "CryptoCompare",
			Category:  models.CategoryPrices,
			Priority:  3,
			BaseURL:   "https://min-api.cryptocompare.com/data",
			Endpoints: []string{"/pricemulti?fsyms=BTC&tsyms=USD"},
			RateLimit: 100,
			Timeout:   30 * time.Second,
		},
		{
			ID:       SourceNiceHash,
			Name:     "NiceHash",
			Category: models.CategoryFees,
			Priority: 5,
			BaseURL:  "https://api2.nicehash.com/main/api/v2",
			Endpoints: []string{
				"/public/stats/global/current",
				"/public/algorithms",
				"/public/mining/algorithms",
				"/public/exchange/rates",
			},
			RateLimit: 20,
			Timeout:   10 * time.Second,
		},
	}
}

// coinGeckoCoins maps CoinGecko coin ids to hashing algorithms.
var coinGeckoCoins = map[string]string{
	"bitcoin":          "SHA256",
	"litecoin":         "Scrypt",
	"ethereum":         "Ethash",
	"dash":             "X11",
	"monero":           "CryptoNight",
	"zcash":            "Equihash",
	"vertcoin":         "Lyra2REv2",
	"decred":           "Blake2s",
	"siacoin":          "Blake14r",
	"ethereum-classic": "DaggerHashimoto",
	"ravencoin":        "KawPow",
	"grin":             "CuckooCycle",
	"beam":             "BeamHash",
	"bitcoin-cash":     "SHA256",
	"dogecoin":         "Scrypt",
	"digibyte":         "Scrypt",
	"feathercoin":      "NeoScrypt",
	"groestlcoin":      "Groestl",
}

// cryptoCompareSymbols maps ticker symbols to hashing algorithms.
var cryptoCompareSymbols = map[string]string{
	"BTC":  "SHA256",
	"LTC":  "Scrypt",
	"ETH":  "Ethash",
	"DASH": "X11",
	"XMR":  "CryptoNight",
	"ZEC":  "Equihash",
}

// whatToMineAlgorithms normalizes WhatToMine algorithm labels.
var whatToMineAlgorithms = map[string]string{
	"BeamHashIII":     "BeamHash",
	"BeamHashII":      "BeamHash",
	"BeamHash":        "BeamHash",
	"KawPow":          "KawPow",
	"CuckooCycle":     "CuckooCycle",
	"Quark":           "Quark",
	"Lyra2REv2":       "Lyra2REv2",
	"SHA256":          "SHA256",
	"Ethash":          "Ethash",
	"Scrypt":          "Scrypt",
	"X11":             "X11",
	"Equihash":        "Equihash",
	"CryptoNight":     "CryptoNight",
	"Blake2s":         "Blake2s",
	"Blake14r":        "Blake14r",
	"DaggerHashimoto": "DaggerHashimoto",
}
