package output

import (
	"strconv"
	"time"

	"github.com/vsinha/shopdesk/pkg/application/dto"
	"github.com/vsinha/shopdesk/pkg/domain/entities"
)

// table is one section of the report, shared by every tabular format
type table struct {
	Title  string
	Icon   string
	File   string
	Header []string
	Rows   [][]string
}

func buildTables(report *dto.ShopReport) []table {
	return []table{
		productTable(report.Products),
		ledgerTable(report.Logs),
		quotationTable(report.Quotations),
		invoiceTable(report.Invoices),
		deliveryTable(report.Deliveries),
		failureTable(report.Failures),
	}
}

func productTable(products []dto.ProductView) table {
	t := table{
		Title:  "Products",
		Icon:   "📦",
		File:   "products",
		Header: []string{"Code", "Barcode", "Name", "Type", "Category", "Quantity", "Stock", "Price", "Tax %", "Status"},
	}
	for _, v := range products {
		p := v.Product
		t.Rows = append(t.Rows, []string{
			p.ProductCode,
			p.Barcode,
			p.Name,
			string(p.Type()),
			p.Category,
			strconv.FormatInt(int64(v.Quantity), 10),
			string(v.StockStatus),
			p.SellingPrice.StringFixed(2),
			p.TaxPercent.String(),
			string(p.Status),
		})
	}
	return t
}

func ledgerTable(logs []*entities.InventoryLog) table {
	t := table{
		Title:  "Inventory Ledger",
		Icon:   "📒",
		File:   "inventory_log",
		Header: []string{"Timestamp", "Product", "Change", "Reason", "User", "Notes"},
	}
	for _, l := range logs {
		t.Rows = append(t.Rows, []string{
			formatTime(l.Timestamp),
			l.ProductCode,
			strconv.FormatInt(int64(l.Change), 10),
			string(l.Reason),
			l.UserName,
			l.Notes,
		})
	}
	return t
}

func quotationTable(quotations []*entities.Quotation) table {
	t := table{
		Title:  "Quotations",
		Icon:   "📝",
		File:   "quotations",
		Header: []string{"Number", "Client", "Status", "Items", "Grand Total", "Valid Until", "Invoice"},
	}
	for _, q := range quotations {
		t.Rows = append(t.Rows, []string{
			q.QuotationNumber,
			q.Client.Name,
			string(q.Status),
			strconv.Itoa(len(q.Items)),
			q.Totals.GrandTotal.StringFixed(2),
			q.ValidUntil.Format("2006-01-02"),
			q.ConvertedInvoiceID,
		})
	}
	return t
}

func invoiceTable(invoices []*entities.Invoice) table {
	t := table{
		Title:  "Invoices",
		Icon:   "🧾",
		File:   "invoices",
		Header: []string{"Number", "Client", "Status", "Payment", "Items", "Subtotal", "Discount", "Tax", "Grand Total", "Created"},
	}
	for _, inv := range invoices {
		t.Rows = append(t.Rows, []string{
			inv.InvoiceNumber,
			inv.Client.Name,
			string(inv.Status),
			string(inv.PaymentMode),
			strconv.Itoa(len(inv.Items)),
			inv.Totals.Subtotal.StringFixed(2),
			inv.Totals.TotalDiscount.StringFixed(2),
			inv.Totals.TotalTax.StringFixed(2),
			inv.Totals.GrandTotal.StringFixed(2),
			formatTime(inv.CreatedAt),
		})
	}
	return t
}

func deliveryTable(deliveries []*entities.Delivery) table {
	t := table{
		Title:  "Deliveries",
		Icon:   "🚚",
		File:   "deliveries",
		Header: []string{"Invoice", "Product", "Quantity", "Stage", "Status", "Events", "Recipient", "Delivered"},
	}
	for _, d := range deliveries {
		delivered := ""
		if d.ActualDeliveryDate != nil {
			delivered = formatTime(*d.ActualDeliveryDate)
		}
		t.Rows = append(t.Rows, []string{
			d.InvoiceNumber,
			d.ProductCode,
			strconv.FormatInt(int64(d.Quantity), 10),
			string(d.CurrentStage),
			string(d.Status),
			strconv.Itoa(len(d.TrackingHistory)),
			d.RecipientName,
			delivered,
		})
	}
	return t
}

func failureTable(failures []dto.OrderFailure) table {
	t := table{
		Title:  "Failed Orders",
		Icon:   "⚠️ ",
		File:   "failed_orders",
		Header: []string{"Order", "Error"},
	}
	for _, f := range failures {
		t.Rows = append(t.Rows, []string{f.Ref, f.Error})
	}
	return t
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
