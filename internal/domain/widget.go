package domain

// Widget identifiers served by the HTTP API.
const (
	WidgetVelocityTracker     = "velocity-tracker"
	WidgetAccelerationAlerts  = "acceleration-alerts"
	WidgetCategoryHeatmap     = "category-heatmap"
	WidgetRisingTickers       = "rising-tickers"
	WidgetPortfolioAggregator = "portfolio-aggregator"
	WidgetCorrelationRadar    = "correlation-radar"
)

// HourlyPoint is one hour of actual/baseline/velocity data for charts.
type HourlyPoint struct {
	Time     string  `json:"time"` // "HH:00"
	Hour     int     `json:"hour"`
	Actual   int     `json:"actual"`
	Baseline int     `json:"baseline"`
	Velocity float64 `json:"velocity"`
}

// PeerVelocity is a category peer's current velocity state.
type PeerVelocity struct {
	Ticker         string    `json:"ticker"`
	Velocity       float64   `json:"velocity"`
	Trend          Trend     `json:"trend"`
	Mentions       int       `json:"mentions"`
	HourlyVelocity []float64 `json:"hourlyVelocity,omitempty"`
}

// VelocityTrackerData is the velocity-tracker widget payload.
type VelocityTrackerData struct {
	Ticker          string         `json:"ticker"`
	Category        string         `json:"category"`
	CurrentVelocity float64        `json:"currentVelocity"`
	CurrentActual   int            `json:"currentActual"`
	CurrentBaseline int            `json:"currentBaseline"`
	BaselineRatio   float64        `json:"baselineRatio"`
	Trend           Trend          `json:"trend"`
	Signal          Signal         `json:"signal"`
	HourlyData      []HourlyPoint  `json:"hourlyData"`
	CategoryPeers   []PeerVelocity `json:"categoryPeers"`
	GeneratedAt     string         `json:"generatedAt"`
}

// Alert kinds for the acceleration-alerts widget.
const (
	AlertSpike = "spike"
	AlertSurge = "surge"
	AlertDrop  = "drop"
)

// AccelerationAlert is one hour-over-hour velocity jump.
type AccelerationAlert struct {
	Time             string  `json:"time"`
	Hour             int     `json:"hour"`
	Magnitude        float64 `json:"magnitude"`
	Type             string  `json:"type"`
	PreviousVelocity float64 `json:"previousVelocity"`
	CurrentVelocity  float64 `json:"currentVelocity"`
}

// AccelerationAlertsData is the acceleration-alerts widget payload.
type AccelerationAlertsData struct {
	Ticker              string              `json:"ticker"`
	Alerts              []AccelerationAlert `json:"alerts"`
	CurrentAcceleration float64             `json:"currentAcceleration"`
	Trend               Trend               `json:"trend"`
	GeneratedAt         string              `json:"generatedAt"`
}

// TickerHeat is one ticker cell in the category heatmap.
type TickerHeat struct {
	Ticker   string  `json:"ticker"`
	Velocity float64 `json:"velocity"`
	Mentions int     `json:"mentions"`
	Trend    Trend   `json:"trend"`
}

// CategoryHeat is one category row in the heatmap.
type CategoryHeat struct {
	Name        string       `json:"name"`
	AvgVelocity float64      `json:"avgVelocity"`
	Tickers     []TickerHeat `json:"tickers"`
}

// CategoryHeatmapData is the category-heatmap widget payload.
type CategoryHeatmapData struct {
	Categories  []CategoryHeat `json:"categories"`
	GeneratedAt string         `json:"generatedAt"`
}

// RisingTicker is one entry in the rising-tickers ranking.
type RisingTicker struct {
	Ticker        string  `json:"ticker"`
	Category      string  `json:"category"`
	Velocity      float64 `json:"velocity"`
	BaselineRatio float64 `json:"baselineRatio"`
	Mentions      int     `json:"mentions"`
	Signal        Signal  `json:"signal"`
	Trend         Trend   `json:"trend"`
}

// RisingTickersData is the rising-tickers widget payload.
type RisingTickersData struct {
	Category    string         `json:"category,omitempty"`
	Tickers     []RisingTicker `json:"tickers"`
	GeneratedAt string         `json:"generatedAt"`
}

// HoldingVelocity is one holding in the portfolio aggregator.
type HoldingVelocity struct {
	Ticker        string  `json:"ticker"`
	Velocity      float64 `json:"velocity"`
	BaselineRatio float64 `json:"baselineRatio"`
	Mentions      int     `json:"mentions"`
	Signal        Signal  `json:"signal"`
	Trend         Trend   `json:"trend"`
}

// PortfolioAggregatorData is the portfolio-aggregator widget payload.
type PortfolioAggregatorData struct {
	Holdings      []HoldingVelocity `json:"holdings"`
	AvgVelocity   float64           `json:"avgVelocity"`
	TotalMentions int               `json:"totalMentions"`
	Signal        Signal            `json:"signal"`
	GeneratedAt   string            `json:"generatedAt"`
}

// CorrelatedTicker is one peer in the correlation radar.
type CorrelatedTicker struct {
	Ticker      string  `json:"ticker"`
	Correlation float64 `json:"correlation"` // Pearson r over today's hourly counts
	Velocity    float64 `json:"velocity"`
	Mentions    int     `json:"mentions"`
}

// CorrelationRadarData is the correlation-radar widget payload.
type CorrelationRadarData struct {
	Ticker      string             `json:"ticker"`
	Peers       []CorrelatedTicker `json:"peers"`
	GeneratedAt string             `json:"generatedAt"`
}
