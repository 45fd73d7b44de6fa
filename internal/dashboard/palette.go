package dashboard

// alpha applied to every category color.
const alpha = "0.7"

// CategoryColors is the fixed palette the charts use, keyed by top-level
// category.
var CategoryColors = map[string]string{
	"Quotidien":    "rgba(255, 0, 0, " + alpha + ")",
	"Loisirs":      "rgba(255, 165, 0, " + alpha + ")",
	"Sorties":      "rgba(128, 0, 128, " + alpha + ")",
	"Transports":   "rgba(0, 0, 250, " + alpha + ")",
	"Maison":       "rgba(255, 255, 0, " + alpha + ")",
	"Santé & Dons": "rgba(255, 105, 180, " + alpha + ")",
	"Revenus":      "rgba(0, 255, 0, " + alpha + ")",
	"Taxes":        "rgba(139, 69, 19, " + alpha + ")",
	"Exclus":       "rgba(128, 128, 128, " + alpha + ")",
}

// DefaultExcluded lists the categories unchecked by default in the sidebar.
var DefaultExcluded = []string{"Exclus", "Taxes"}
