package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/imcufide/convocatorias/internal/models"
)

const (
	pageWidth  = 215.9 // letter, mm
	marginSide = 25.4

	logoWidth  = 50.8 // 2in x 1in bounding box
	logoHeight = 25.4

	labelColWidth = 63.5
	valueColWidth = 101.6
)

// Generate renders one convocatoria into a paginated PDF. Sections appear in
// a fixed order and are omitted when their driving data is empty; the only
// exception is the contact block, which is always emitted. The record is
// never mutated.
func Generate(c *models.Convocatoria) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "Letter", "")
	doc.SetMargins(marginSide, 12.7, marginSide)
	doc.SetAutoPageBreak(true, 12.7)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	addLogo(doc, c.LogoPath)

	// Title block.
	doc.SetFont("Helvetica", "B", 16)
	doc.SetTextColor(26, 84, 144)
	doc.MultiCell(0, 8, tr("CONVOCATORIA\n"+strings.ToUpper(c.Name)), "", "C", false)
	doc.Ln(3)

	doc.SetFont("Helvetica", "B", 10)
	doc.SetTextColor(0, 0, 0)
	doc.MultiCell(0, 5, tr(c.ResponsibleInstitution), "", "C", false)
	doc.Ln(5)

	addKeyFacts(doc, tr, c)

	addTextSection(doc, tr, "DESCRIPTION", c.Description)
	addTextSection(doc, tr, "COMPETITION FORMAT", c.CompetitionFormat)
	addTextSection(doc, tr, "REQUIREMENTS", c.Requirements)
	addRegistration(doc, tr, c)
	addPrizes(doc, tr, c)
	addTextSection(doc, tr, "ORGANIZING COMMITTEE", c.OrganizingCommittee)
	addContact(doc, tr, c)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename derives the download name for a convocatoria's document.
func Filename(c *models.Convocatoria) string {
	return fmt.Sprintf("convocatoria_%s.pdf", c.Name)
}

// addLogo places the organization logo centered at the top, scaled into a
// fixed bounding box. Best effort: a missing, undecodable or unembeddable
// file leaves the document without a logo rather than failing it.
func addLogo(doc *gofpdf.Fpdf, path string) {
	if path == "" {
		return
	}
	file, err := os.Open(path)
	if err != nil {
		return
	}
	_, format, err := image.DecodeConfig(file)
	file.Close()
	if err != nil {
		return
	}

	// A registration failure (16-bit PNGs, unsupported interlacing) sticks
	// to the Fpdf object and fails the whole document at Output time, so
	// the image is registered on a scratch document first. Only a logo the
	// renderer demonstrably accepts reaches the real one.
	opts := gofpdf.ImageOptions{ImageType: format, ReadDpi: true}
	scratch := gofpdf.New("P", "mm", "Letter", "")
	scratch.RegisterImageOptions(path, opts)
	if scratch.Err() {
		return
	}

	x := (pageWidth - logoWidth) / 2
	doc.ImageOptions(path, x, doc.GetY(), logoWidth, logoHeight, true, opts, 0, "")
	doc.Ln(5)
}

func addKeyFacts(doc *gofpdf.Fpdf, tr func(string) string, c *models.Convocatoria) {
	rows := [][2]string{
		{"Sport:", c.Sport},
		{"Category:", string(c.Category)},
		{"Division:", string(c.Division)},
		{"Start Date:", c.StartDate.Format("02/01/2006")},
		{"Registration Deadline:", c.RegistrationDeadline.Format("02/01/2006")},
		{"Status:", string(c.Status)},
	}

	doc.SetFontSize(10)
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(230, 242, 255)
		doc.CellFormat(labelColWidth, 7, row[0], "1", 0, "L", true, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(valueColWidth, 7, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	doc.Ln(5)
}

func addTextSection(doc *gofpdf.Fpdf, tr func(string) string, heading, body string) {
	if body == "" {
		return
	}
	addHeading(doc, heading)
	addBody(doc, tr(body))
	doc.Ln(4)
}

func addRegistration(doc *gofpdf.Fpdf, tr func(string) string, c *models.Convocatoria) {
	addHeading(doc, "REGISTRATION")

	rows := [][2]string{
		{"Fee:", fmt.Sprintf("$%.2f", c.RegistrationFee)},
	}
	if c.RegistrationLocation != "" {
		rows = append(rows, [2]string{"Location:", c.RegistrationLocation})
	}
	if c.PaymentMethod != "" {
		rows = append(rows, [2]string{"Payment method:", c.PaymentMethod})
	}

	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 9)
		doc.CellFormat(labelColWidth, 6, row[0], "1", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(valueColWidth, 6, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	doc.Ln(4)
}

// addPrizes lists the podium. The whole section hinges on a first-place
// prize being present, matching the announcement format.
func addPrizes(doc *gofpdf.Fpdf, tr func(string) string, c *models.Convocatoria) {
	if c.PrizeFirst == "" {
		return
	}
	addHeading(doc, "PRIZES")

	prizes := [][2]string{
		{"1st Place:", c.PrizeFirst},
		{"2nd Place:", c.PrizeSecond},
		{"3rd Place:", c.PrizeThird},
	}
	for _, prize := range prizes {
		if prize[1] == "" {
			continue
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.Write(5, prize[0]+" ")
		doc.SetFont("Helvetica", "", 10)
		doc.Write(5, tr(prize[1]))
		doc.Ln(6)
	}
	doc.Ln(4)
}

// addContact always emits the heading, even when every contact field is
// empty. Kept deliberately for parity with the published format.
func addContact(doc *gofpdf.Fpdf, tr func(string) string, c *models.Convocatoria) {
	addHeading(doc, "CONTACT INFORMATION")

	lines := [][2]string{
		{"Address:", c.Address},
		{"Phone:", c.Phone},
		{"Email:", c.Email},
	}
	for _, line := range lines {
		if line[1] == "" {
			continue
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.Write(5, line[0]+" ")
		doc.SetFont("Helvetica", "", 10)
		doc.Write(5, tr(line[1]))
		doc.Ln(6)
	}
}

func addHeading(doc *gofpdf.Fpdf, heading string) {
	doc.SetFont("Helvetica", "B", 12)
	doc.SetTextColor(44, 90, 160)
	doc.CellFormat(0, 7, heading, "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
}

func addBody(doc *gofpdf.Fpdf, body string) {
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, body, "", "J", false)
}
