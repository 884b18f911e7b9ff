// Package invoice renders order invoices as A4 PDF documents.
package invoice

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/heartscript/storefront/app/models"
	"github.com/heartscript/storefront/app/utils/format"
)

// Data is everything printed on an invoice.
type Data struct {
	OrderID     uint
	DateOrdered time.Time
	Status      string
	Name        string
	HouseNo     string
	Address     string
	Pincode     string
	Items       string
	Amount      float64
}

// FromOrder builds invoice data from a stored order. A total that is not a
// number is printed as 0.00.
func FromOrder(o *models.Order) Data {
	return Data{
		OrderID:     o.ID,
		DateOrdered: o.DateOrdered,
		Status:      o.Status,
		Name:        o.Name,
		HouseNo:     o.HouseNo,
		Address:     o.Address,
		Pincode:     o.Pincode,
		Items:       o.Items,
		Amount:      format.ParseAmount(o.Total),
	}
}

type Renderer interface {
	Render(data Data) ([]byte, error)
}

const brandDescription = "Welcome to HeartScript, a premier global destination where artisan craftsmanship meets deep human emotions. " +
	"Our platform is dedicated to preserving your most cherished memories through meticulously handcrafted masterpieces " +
	"that transcend time and borders. From bespoke love letters to personalized artistic legacies, HeartScript " +
	"is recognized globally for its commitment to quality, elegance, and soul-stirring designs. Every order is " +
	"a timeless heritage delivered to over 50 countries with the utmost care. Experience luxury, experience HeartScript."

type rgb struct{ r, g, b int }

var (
	primary   = rgb{255, 65, 108}
	textDark  = rgb{44, 62, 80}
	textLight = rgb{127, 140, 141}
	accent    = rgb{255, 75, 43}
)

type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// OrderNumber formats an order id the way it is printed on invoices.
func OrderNumber(id uint) string {
	return fmt.Sprintf("#HS-%05d", id)
}

func (r *PDFRenderer) Render(data Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("HeartScript Invoice "+OrderNumber(data.OrderID), true)
	pdf.SetCreationDate(data.DateOrdered)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	setDraw := func(c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
	setText := func(c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }

	// double frame
	setDraw(primary)
	pdf.SetLineWidth(0.5)
	pdf.Rect(5, 5, 200, 287, "D")
	pdf.SetLineWidth(1.5)
	pdf.Rect(7, 7, 196, 283, "D")

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 32)
	setText(primary)
	pdf.CellFormat(0, 12, "HEARTSCRIPT", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 11)
	setText(textLight)
	pdf.CellFormat(0, 8, "Artisan Handcrafted Legacies - Shipped Globally", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(255, 245, 247)
	pdf.SetFont("Times", "I", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.SetX(15)
	pdf.MultiCell(180, 5, brandDescription, "", "C", true)
	pdf.Ln(10)

	pdf.SetDrawColor(230, 230, 230)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(5)

	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 10)
	setText(textDark)
	pdf.SetXY(15, top)
	pdf.CellFormat(90, 6, "ORDER ID: "+OrderNumber(data.OrderID), "", 1, "", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(15)
	pdf.CellFormat(90, 6, "DATE: "+data.DateOrdered.Format("02 Jan, 2006"), "", 1, "", false, 0, "")

	pdf.SetXY(110, top)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(85, 6, tr("STATUS: "+strings.ToUpper(data.Status)), "", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	setText(primary)
	pdf.SetX(15)
	pdf.CellFormat(90, 7, "BILL TO:", "", 1, "", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	setText(textDark)
	pdf.SetX(15)
	pdf.CellFormat(90, 6, tr(strings.ToUpper(data.Name)), "", 1, "", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetX(15)
	pdf.MultiCell(90, 5, tr(fmt.Sprintf("%s, %s, PIN: %s", data.HouseNo, data.Address, data.Pincode)), "", "", false)
	pdf.Ln(10)

	amount := format.FormatRupees(data.Amount)

	pdf.SetX(15)
	pdf.SetFillColor(primary.r, primary.g, primary.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 12, "  MASTERPIECE SELECTION", "", 0, "L", true, 0, "")
	pdf.CellFormat(50, 12, "TOTAL (INR)  ", "", 1, "R", true, 0, "")

	pdf.SetX(15)
	pdf.SetFillColor(252, 252, 252)
	setText(textDark)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(130, 15, tr("  "+data.Items), "B", 0, "L", true, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(50, 15, amount+"  ", "B", 1, "R", true, 0, "")

	pdf.Ln(5)
	pdf.SetX(15)
	pdf.SetFont("Helvetica", "B", 16)
	setText(accent)
	pdf.CellFormat(180, 15, "GRAND TOTAL: "+amount, "", 1, "R", false, 0, "")

	// footer
	pdf.SetY(-45)
	setDraw(primary)
	pdf.Line(40, pdf.GetY(), 170, pdf.GetY())
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "B", 10)
	setText(primary)
	pdf.CellFormat(0, 5, "WWW.HEARTSCRIPT.COM", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	setText(textLight)
	pdf.CellFormat(0, 4, "Global Luxury Gifting | Hand-Carved Memories | Secure Worldwide Shipping", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: render order %d: %w", data.OrderID, err)
	}
	return buf.Bytes(), nil
}
