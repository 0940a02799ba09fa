package cleaner

// Input columns, named exactly as the export's data dictionary names them.
const (
	ColOrderID      = "Order ID"
	ColOrderDate    = "Order Date"
	ColShipDate     = "Ship Date"
	ColCustomerID   = "Customer ID"
	ColCustomerName = "Customer Name"
	ColSegment      = "Segment"
	ColCity         = "City"
	ColState        = "State"
	ColPostalCode   = "Postal Code"
	ColRegion       = "Region"
	ColProductID    = "Product ID"
	ColProductName  = "Product Name"
	ColCategory     = "Category"
	ColSubCategory  = "Sub-Category"
	ColSales        = "Sales"
	ColQuantity     = "Quantity"
	ColDiscount     = "Discount"
	ColProfit       = "Profit"
)

// Derived columns appended to the output.
const (
	ColStateCode    = "State Code"
	ColOrderYear    = "Order Year"
	ColOrderMonth   = "Order Month"
	ColMonthName    = "Month Name"
	ColYearMonth    = "Year Month"
	ColOrderWeekday = "Order Weekday"
	ColShippingDays = "Shipping Days"
	ColSalesOutlier = "Sales Outlier"
)

// InputColumns is the canonical input column order. Output preserves it;
// columns absent from the input are carried as all-missing.
var InputColumns = []string{
	ColOrderID,
	ColOrderDate,
	ColShipDate,
	ColCustomerID,
	ColCustomerName,
	ColSegment,
	ColCity,
	ColState,
	ColPostalCode,
	ColRegion,
	ColProductID,
	ColProductName,
	ColCategory,
	ColSubCategory,
	ColSales,
	ColQuantity,
	ColDiscount,
	ColProfit,
}

// DerivedColumns is the output-only column order, appended after InputColumns.
var DerivedColumns = []string{
	ColStateCode,
	ColOrderYear,
	ColOrderMonth,
	ColMonthName,
	ColYearMonth,
	ColOrderWeekday,
	ColShippingDays,
	ColSalesOutlier,
}

// NumericColumns are coerced to numbers during cleaning.
var NumericColumns = []string{ColSales, ColQuantity, ColDiscount, ColProfit}

// OutputDateLayout is how dates are rendered in the output file.
const OutputDateLayout = "2006-01-02"

// Imputation policies for numeric columns other than Quantity.
const (
	ImputeMedian = "median"
	ImputeZero   = "zero"
	ImputeDrop   = "drop"
)

// DefaultOutlierFactor is the IQR multiplier for the sales outlier flag.
const DefaultOutlierFactor = 1.5
