package dto

import "time"

// TrendPoint total mensual de salidas de un comercio.
type TrendPoint struct {
	Month         string `json:"month"` // YYYY-MM
	Year          int    `json:"year"`
	MonthNumber   int    `json:"monthNumber"`
	TotalQuantity int64  `json:"totalQuantity"`
	IsHighVolume  bool   `json:"isHighVolume"`
}

// TrendSummary agregados de la serie.
type TrendSummary struct {
	TotalQuantity    int64 `json:"totalQuantity"`
	AverageQuantity  int64 `json:"averageQuantity"`
	HighVolumeMonths int   `json:"highVolumeMonths"`
}

// TrendResponse GET /api/sales-analysis/trend.
type TrendResponse struct {
	MerchantID   string       `json:"merchantId"`
	MerchantName string       `json:"merchantName"`
	Points       []TrendPoint `json:"points"`
	Summary      TrendSummary `json:"summary"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}

// ProductAlert evaluación de reposición de un producto.
type ProductAlert struct {
	ProductID           string `json:"productId"`
	Name                string `json:"name"`
	Specification       string `json:"specification"`
	Unit                string `json:"unit"`
	CurrentStock        int64  `json:"currentStock"`
	AverageMonthlySales int64  `json:"averageMonthlySales"`
	AlertThreshold      int64  `json:"alertThreshold"`
	RecommendedPurchase int64  `json:"recommendedPurchase"`
	AlertLevel          string `json:"alertLevel"` // critical | low | normal
}

// AlertSummary agregados del reporte de alertas.
type AlertSummary struct {
	TotalProducts            int   `json:"totalProducts"`
	NormalProducts           int   `json:"normalProducts"`
	LowStockProducts         int   `json:"lowStockProducts"`
	CriticalStockProducts    int   `json:"criticalStockProducts"`
	AverageStockLevel        int64 `json:"averageStockLevel"`
	TotalRecommendedPurchase int64 `json:"totalRecommendedPurchase"`
}

// AlertReportResponse GET /api/sales-analysis/inventory-alert.
type AlertReportResponse struct {
	Products    []ProductAlert `json:"products"`
	Summary     AlertSummary   `json:"summary"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
