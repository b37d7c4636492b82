package domain

// ColumnRoles maps semantic dashboard roles to column names. Empty string
// means the role is unassigned. Sales, quantity and cost roles must point
// at number columns; the date role at a date column.
type ColumnRoles struct {
	SalesColumn    string `json:"sales_column"`
	QuantityColumn string `json:"quantity_column"`
	CustomerColumn string `json:"customer_column"`
	DateColumn     string `json:"date_column"`
	CostColumn     string `json:"cost_column,omitempty"`
}

// KPISet holds the summary metrics computed over a row subset.
type KPISet struct {
	TotalOrders       int     `json:"total_orders"`
	TotalSales        float64 `json:"total_sales"`
	TotalQuantity     float64 `json:"total_quantity"`
	AverageOrderValue float64 `json:"average_order_value"`
	UniqueCustomers   int     `json:"unique_customers"`

	// Cost metrics are populated only when a cost column is configured.
	HasCostMetrics bool    `json:"has_cost_metrics"`
	TotalCost      float64 `json:"total_cost,omitempty"`
	TotalProfit    float64 `json:"total_profit,omitempty"`
	ProfitMargin   float64 `json:"profit_margin,omitempty"`
}

// AggregateMode selects the per-bucket reduction for grouped aggregation.
type AggregateMode string

const (
	AggregateSum     AggregateMode = "sum"
	AggregateCount   AggregateMode = "count"
	AggregateAverage AggregateMode = "average"
)

// Bucket is one group of a chart aggregation: the string form of the
// group column value, the reduced metric, and the contributing row count.
type Bucket struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}
