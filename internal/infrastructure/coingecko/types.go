package coingecko

import (
	"time"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

type coinDetailResponse struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Error       string `json:"error"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Image struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	MarketCapRank int    `json:"market_cap_rank"`
	LastUpdated   string `json:"last_updated"`
	MarketData    *struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
		PriceChangePercentage7d  float64            `json:"price_change_percentage_7d"`
		PriceChangePercentage30d float64            `json:"price_change_percentage_30d"`
		CirculatingSupply        float64            `json:"circulating_supply"`
	} `json:"market_data"`
}

func (r *coinDetailResponse) toEntity() *entities.CoinDetail {
	detail := &entities.CoinDetail{
		ID:            r.ID,
		Symbol:        r.Symbol,
		Name:          r.Name,
		Description:   r.Description.En,
		Image:         r.Image.Large,
		MarketCapRank: r.MarketCapRank,
		LastUpdated:   r.LastUpdated,
		CurrentPrice:  map[string]float64{},
		MarketCap:     map[string]float64{},
		TotalVolume:   map[string]float64{},
	}
	for _, home := range r.Links.Homepage {
		if home != "" {
			detail.Homepage = home
			break
		}
	}
	if md := r.MarketData; md != nil {
		if md.CurrentPrice != nil {
			detail.CurrentPrice = md.CurrentPrice
		}
		if md.MarketCap != nil {
			detail.MarketCap = md.MarketCap
		}
		if md.TotalVolume != nil {
			detail.TotalVolume = md.TotalVolume
		}
		detail.PriceChange24h = md.PriceChangePercentage24h
		detail.PriceChange7d = md.PriceChangePercentage7d
		detail.PriceChange30d = md.PriceChangePercentage30d
		detail.CirculatingSupply = md.CirculatingSupply
	}
	return detail
}

// marketChartResponse carries [unix_ms, value] pairs
type marketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func (r *marketChartResponse) toPoints() []entities.HistoryPoint {
	points := make([]entities.HistoryPoint, 0, len(r.Prices))
	for i, p := range r.Prices {
		point := entities.HistoryPoint{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Price:     p[1],
		}
		if i < len(r.MarketCaps) {
			point.MarketCap = r.MarketCaps[i][1]
		}
		if i < len(r.TotalVolumes) {
			point.Volume = r.TotalVolumes[i][1]
		}
		points = append(points, point)
	}
	return points
}

type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		MarketCapRank int    `json:"market_cap_rank"`
		Thumb         string `json:"thumb"`
		Large         string `json:"large"`
	} `json:"coins"`
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string  `json:"id"`
			Name          string  `json:"name"`
			Symbol        string  `json:"symbol"`
			MarketCapRank int     `json:"market_cap_rank"`
			Thumb         string  `json:"thumb"`
			Large         string  `json:"large"`
			Score         int     `json:"score"`
			PriceBTC      float64 `json:"price_btc"`
		} `json:"item"`
	} `json:"coins"`
}
