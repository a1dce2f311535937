package sources

import (
	"context"
	"fmt"
	"strings"

	"HashArb/internal/domain/models"
	pkghttp "HashArb/pkg/http"
)

// btcReferenceUSD converts USD profitability figures to BTC.
const btcReferenceUSD = 50000.0

// feeMarkets are the marketplace regions fee quotes are collected for.
var feeMarkets = []string{"EU", "US"}

// --- WhatToMine ---

// WhatToMineProvider serves pool profitability and backup price data.
type WhatToMineProvider struct {
	client *pkghttp.Client
	base   string
}

func NewWhatToMineProvider(desc models.SourceDescriptor) *WhatToMineProvider {
	return &WhatToMineProvider{
		client: pkghttp.NewClient(pkghttp.WithTimeout(desc.Timeout)),
		base:   desc.BaseURL,
	}
}

type wtmCoin struct {
	Algorithm       string  `json:"algorithm"`
	Profitability24 float64 `json:"profitability24"`
	ExchangeRate    float64 `json:"exchange_rate"`
}

type wtmResponse struct {
	Coins map[string]wtmCoin `json:"coins"`
}

// FetchProfits returns estimated daily pool profit per algorithm in BTC.
func (p *WhatToMineProvider) FetchProfits(ctx context.Context) (map[string]float64, error) {
	var resp wtmResponse
	err := p.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    p.base + "/coins.json",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("whattomine coins: %w", err)
	}

	profits := make(map[string]float64)
	for _, coin := range resp.Coins {
		algo, ok := whatToMineAlgorithms[coin.Algorithm]
		if !ok {
			continue
		}
		btc := coin.Profitability24 / btcReferenceUSD
		if btc < 0.0001 {
			btc = 0.0001
		}
		profits[algo] = btc
	}
	return profits, nil
}

// FetchPrices returns exchange-rate based prices per algorithm.
func (p *WhatToMineProvider) FetchPrices(ctx context.Context) (map[string]float64, error) {
	var resp wtmResponse
	err := p.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    p.base + "/coins.json",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("whattomine coins: %w", err)
	}

	prices := make(map[string]float64)
	for _, coin := range resp.Coins {
		algo, ok := whatToMineAlgorithms[coin.Algorithm]
		if !ok || coin.ExchangeRate <= 0 {
			continue
		}
		prices[algo] = coin.ExchangeRate
	}
	return prices, nil
}

// --- CoinGecko ---

// CoinGeckoProvider serves USD spot prices converted to BTC.
type CoinGeckoProvider struct {
	client *pkghttp.Client
	base   string
}

func NewCoinGeckoProvider(desc models.SourceDescriptor) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client: pkghttp.NewClient(pkghttp.WithTimeout(desc.Timeout)),
		base:   desc.BaseURL,
	}
}

func (p *CoinGeckoProvider) FetchPrices(ctx context.Context) (map[string]float64, error) {
	ids := make([]string, 0, len(coinGeckoCoins))
	for id := range coinGeckoCoins {
		ids = append(ids, id)
	}

	var resp map[string]map[string]float64
	err := p.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    p.base + "/simple/price",
		QueryParams: map[string][]string{
			"ids":           {strings.Join(ids, ",")},
			"vs_currencies": {"usd"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("coingecko prices: %w", err)
	}

	btcUSD := btcReferenceUSD
	if v, ok := resp["bitcoin"]["usd"]; ok && v > 0 {
		btcUSD = v
	}

	prices := make(map[string]float64)
	for id, quote := range resp {
		algo, ok := coinGeckoCoins[id]
		if !ok {
			continue
		}
		usd, ok := quote["usd"]
		if !ok {
			continue
		}
		if id == "bitcoin" {
			// A whole BTC is not a rental price; use a sane SHA256 figure.
			prices[algo] = 0.005
			continue
		}
		prices[algo] = usd / btcUSD
	}
	return prices, nil
}

// --- CryptoCompare ---

// CryptoCompareProvider serves BTC-denominated spot prices.
type CryptoCompareProvider struct {
	client *pkghttp.Client
	base   string
}

func NewCryptoCompareProvider(desc models.SourceDescriptor) *CryptoCompareProvider {
	return &CryptoCompareProvider{
		client: pkghttp.NewClient(pkghttp.WithTimeout(desc.Timeout)),
		base:   desc.BaseURL,
	}
}

func (p *CryptoCompareProvider) FetchPrices(ctx context.Context) (map[string]float64, error) {
	symbols := make([]string, 0, len(cryptoCompareSymbols))
	for s := range cryptoCompareSymbols {
		symbols = append(symbols, s)
	}

	var resp map[string]map[string]float64
	err := p.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    p.base + "/pricemulti",
		QueryParams: map[string][]string{
			"fsyms": {strings.Join(symbols, ",")},
			"tsyms": {"BTC"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("cryptocompare prices: %w", err)
	}

	prices := make(map[string]float64)
	for symbol, quote := range resp {
		algo, ok := cryptoCompareSymbols[symbol]
		if !ok {
			continue
		}
		if btc, ok := quote["BTC"]; ok {
			prices[algo] = btc
		}
	}
	return prices, nil
}

// --- NiceHash marketplace stats ---

// NiceHashStatsProvider serves per-market marketplace fee quotes.
type NiceHashStatsProvider struct {
	client *pkghttp.Client
	base   string
}

func NewNiceHashStatsProvider(desc models.SourceDescriptor) *NiceHashStatsProvider {
	return &NiceHashStatsProvider{
		client: pkghttp.NewClient(pkghttp.WithTimeout(desc.Timeout)),
		base:   desc.BaseURL,
	}
}

type nhGlobalStats struct {
	Algos []struct {
		Algorithm string  `json:"algorithm"`
		Fee       float64 `json:"fee"`
	} `json:"algos"`
}

// FetchFees collects the fee rate per algorithm for every marketplace region.
// A region that fails is skipped; all regions failing is an error.
func (p *NiceHashStatsProvider) FetchFees(ctx context.Context) (models.Fees, error) {
	fees := models.Fees{}
	var lastErr error
	for _, market := range feeMarkets {
		var resp nhGlobalStats
		err := p.client.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method:      pkghttp.MethodGet,
			URL:         p.base + "/public/stats/global/current",
			QueryParams: map[string][]string{"market": {market}},
		}, &resp)
		if err != nil {
			lastErr = fmt.Errorf("global stats %s: %w", market, err)
			continue
		}
		for _, a := range resp.Algos {
			if a.Algorithm == "" || a.Fee < 0 || a.Fee >= 1 {
				continue
			}
			if fees[a.Algorithm] == nil {
				fees[a.Algorithm] = make(map[string]float64)
			}
			fees[a.Algorithm][market] = a.Fee
		}
	}
	if len(fees) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return fees, nil
}
