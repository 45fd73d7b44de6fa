package ledger

import (
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/mlaborde/suivi/internal/domain"
)

// Property names in the transactions database. The database predates this
// codebase and is shared with manual entry, so the labels are French.
const (
	propDate        = "Date"
	propName        = "Nom"
	propCategory    = "Catégorie"
	propAmount      = "Montant"
	propDescription = "Description"
	propExternalID  = "ID Transaction"
	propAccount     = "Compte"
)

// pageToTransaction maps a Notion page's properties to a domain transaction.
// Date and amount are mandatory; category, description, external ID and
// account are tolerated as empty when unset.
func pageToTransaction(page notionapi.Page) (domain.Transaction, error) {
	var tx domain.Transaction

	dateProp, ok := page.Properties[propDate].(*notionapi.DateProperty)
	if !ok || dateProp.Date == nil || dateProp.Date.Start == nil {
		return tx, fmt.Errorf("page %s: missing date", page.ID)
	}
	tx.Date = time.Time(*dateProp.Date.Start)

	numberProp, ok := page.Properties[propAmount].(*notionapi.NumberProperty)
	if !ok {
		return tx, fmt.Errorf("page %s: missing amount", page.ID)
	}
	tx.Amount = decimal.NewFromFloat(numberProp.Number)

	if titleProp, ok := page.Properties[propName].(*notionapi.TitleProperty); ok && len(titleProp.Title) > 0 {
		tx.Name = titleProp.Title[0].PlainText
	}
	if selectProp, ok := page.Properties[propCategory].(*notionapi.SelectProperty); ok {
		tx.Category = selectProp.Select.Name
	}
	if richProp, ok := page.Properties[propDescription].(*notionapi.RichTextProperty); ok && len(richProp.RichText) > 0 {
		tx.Description = richProp.RichText[0].PlainText
	}
	if richProp, ok := page.Properties[propExternalID].(*notionapi.RichTextProperty); ok && len(richProp.RichText) > 0 {
		tx.ExternalID = richProp.RichText[0].PlainText
	}
	if selectProp, ok := page.Properties[propAccount].(*notionapi.SelectProperty); ok {
		tx.Account = selectProp.Select.Name
	}

	return tx, nil
}

// transactionToProperties converts a domain transaction to Notion page
// properties for the create-record path.
func transactionToProperties(tx domain.Transaction) notionapi.Properties {
	date := notionapi.Date(tx.Date)
	amount, _ := tx.Amount.Float64()

	props := notionapi.Properties{
		propName: notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: tx.Name},
				},
			},
		},
		propDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &date},
		},
		propAmount: notionapi.NumberProperty{
			Number: amount,
		},
		propDescription: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: tx.Description},
				},
			},
		},
	}

	if tx.Category != "" {
		props[propCategory] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: tx.Category},
		}
	}
	if tx.ExternalID != "" {
		props[propExternalID] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: tx.ExternalID},
				},
			},
		}
	}
	if tx.Account != "" {
		props[propAccount] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: tx.Account},
		}
	}

	return props
}

// extractExternalID extracts the dedup identifier from a Notion page's
// properties. Returns empty string if not found.
func extractExternalID(page notionapi.Page) string {
	if prop, ok := page.Properties[propExternalID]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
