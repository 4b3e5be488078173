package reports

import (
	"fmt"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/money"
)

// stampLayout renders report timestamps, e.g. "October 12, 2025 09:30 AM".
const stampLayout = "January 02, 2006 03:04 PM"

var (
	rule35 = strings.Repeat("=", 35)
	rule40 = strings.Repeat("=", 40)
)

// Render formats the analytics report for chat.
func (a *Analytics) Render() string {
	var b strings.Builder
	b.WriteString("📊 *PREDICTIVE ANALYTICS & INSIGHTS*\n")
	fmt.Fprintf(&b, "📅 Generated: %s\n", a.GeneratedAt.Format(stampLayout))
	b.WriteString(rule40 + "\n\n")

	b.WriteString("💰 *REVENUE TRENDS:*\n")
	fmt.Fprintf(&b, "This Week: %s\n", money.Format(a.Revenue.ThisWeek))
	fmt.Fprintf(&b, "Last Week: %s\n", money.Format(a.Revenue.LastWeek))
	fmt.Fprintf(&b, "Growth: %+.1f%% %s\n\n", a.Revenue.GrowthPercent, trendEmoji(a.Revenue.GrowthPercent))

	b.WriteString("🔥 *TOP SELLING (Last 30 Days):*\n")
	if len(a.TopDrugs) == 0 {
		b.WriteString("No sales yet\n")
	}
	for i, d := range a.TopDrugs {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s: %d units (%d orders)\n", i+1, inventory.DisplayName(d.DrugName), d.Units, d.Orders)
	}
	b.WriteString("\n")

	if len(a.StockoutRisk) > 0 {
		b.WriteString("⚠️ *STOCK-OUT RISK ALERT:*\n")
		for i, r := range a.StockoutRisk {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "• %s: %d left (%.1f days until out)\n", inventory.DisplayName(r.DrugName), r.Stock, r.DaysUntilEmpty)
		}
		b.WriteString("💡 *Action:* Restock these items soon!\n\n")
	}

	b.WriteString("👥 *CUSTOMER METRICS:*\n")
	fmt.Fprintf(&b, "Total Customers: %d\n", a.Retention.TotalCustomers)
	fmt.Fprintf(&b, "Returning: %d\n", a.Retention.ReturningCustomers)
	fmt.Fprintf(&b, "Retention Rate: %.1f%%\n\n", a.Retention.Rate)

	b.WriteString("💊 *MEDICATION ADHERENCE:*\n")
	fmt.Fprintf(&b, "Active Treatments: %d\n", a.Adherence.Courses)
	fmt.Fprintf(&b, "Completed: %d\n", a.Adherence.Completed)
	fmt.Fprintf(&b, "Adherence Rate: %.1f%%\n\n", a.Adherence.Rate)

	if len(a.PeakHours) > 0 {
		b.WriteString("⏰ *BUSIEST HOURS:*\n")
		for _, p := range a.PeakHours {
			fmt.Fprintf(&b, "• %s: %d messages\n", clockHour(p.Hour), p.Messages)
		}
		b.WriteString("\n")
	}

	b.WriteString("💡 *RECOMMENDATIONS:*\n")
	recs := a.Recommendations()
	if len(recs) == 0 {
		b.WriteString("• Keep it up! No action needed\n")
	}
	for _, r := range recs {
		fmt.Fprintf(&b, "• %s\n", r)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Recommendations derives follow-ups from the figures.
func (a *Analytics) Recommendations() []string {
	recs := []string{}
	if len(a.StockoutRisk) > 0 {
		recs = append(recs, "Urgent: Restock low inventory items")
	}
	if a.Revenue.GrowthPercent < 0 {
		recs = append(recs, "Consider promotional campaigns")
	}
	if a.Retention.Rate < 50 {
		recs = append(recs, "Improve customer retention programs")
	}
	if a.Adherence.Rate < 70 {
		recs = append(recs, "Enhance medication reminder system")
	}
	return recs
}

// Render formats the inventory analysis for chat.
func (a *InventoryAnalysis) Render() string {
	var b strings.Builder
	b.WriteString("📦 *INVENTORY ANALYSIS*\n")
	b.WriteString(rule35 + "\n\n")

	b.WriteString("📊 *OVERVIEW:*\n")
	fmt.Fprintf(&b, "Total Items: %d\n", a.Overview.TotalItems)
	fmt.Fprintf(&b, "Total Value: %s\n", money.Format(a.Overview.TotalValue))
	fmt.Fprintf(&b, "Avg Stock: %d units\n\n", int(a.Overview.AvgStock))

	if len(a.LowStock) > 0 {
		fmt.Fprintf(&b, "⚠️ *LOW STOCK (%d items):*\n", len(a.LowStock))
		for i, item := range a.LowStock {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "• %s: %d left (%s)\n", inventory.DisplayName(item.DrugName), item.Quantity, money.Format(item.Price))
		}
		b.WriteString("\n")
	}

	b.WriteString("💎 *TOP VALUE ITEMS:*\n")
	for i, item := range a.TopValue {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "• %s: %s\n", inventory.DisplayName(item.DrugName), money.Format(item.TotalValue))
	}
	b.WriteString("\n")

	b.WriteString("📁 *BY CATEGORY:*\n")
	for i, c := range a.ByCategory {
		if i == 5 {
			break
		}
		category := c.Category
		if category == "" {
			category = "uncategorised"
		}
		fmt.Fprintf(&b, "• %s: %d items (%s)\n", inventory.DisplayName(category), c.ItemCount, money.Format(c.Value))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Render formats the weekly summary for chat and the report endpoint.
func (w *WeeklySummary) Render() string {
	var b strings.Builder
	b.WriteString("📊 *WEEKLY SUMMARY REPORT*\n")
	fmt.Fprintf(&b, "📅 %s (%s)\n", w.GeneratedAt.Format("January 02, 2006"), w.Week)
	b.WriteString(rule35 + "\n\n")

	top := "N/A"
	if w.TopDrug != "" {
		top = inventory.DisplayName(w.TopDrug)
	}
	b.WriteString("💰 *SALES:*\n")
	fmt.Fprintf(&b, "Total Revenue: %s\n", money.Format(w.Revenue))
	fmt.Fprintf(&b, "Orders: %d\n", w.Purchases)
	fmt.Fprintf(&b, "Customers: %d\n", w.UniqueCustomers)
	fmt.Fprintf(&b, "Top Drug: %s\n\n", top)

	b.WriteString("📨 *ENGAGEMENT:*\n")
	fmt.Fprintf(&b, "Messages: %d\n", w.Messages)

	if len(w.LowStock) > 0 {
		fmt.Fprintf(&b, "\n⚠️ *LOW STOCK:* %d items\n", len(w.LowStock))
		for i, item := range w.LowStock {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "  • %s: %d\n", inventory.DisplayName(item.DrugName), item.Quantity)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func trendEmoji(growth float64) string {
	switch {
	case growth > 0:
		return "📈"
	case growth < 0:
		return "📉"
	default:
		return "➡️"
	}
}

// clockHour renders a 0-23 hour as "9 AM" / "12 PM".
func clockHour(hour int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d %s", display, period)
}
