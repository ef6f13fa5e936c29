// Package i18n holds the French and English message catalogs used for API error
// details and invoice documents.
package i18n

import (
	"fmt"
	"strings"
)

const DefaultLang = "fr"

var catalogs = map[string]map[string]string{
	"fr": {
		"required":             "Requis",
		"must_be_positive":     "Doit être positif",
		"must_not_be_negative": "Ne doit pas être négatif",
		"out_of_range":         "Hors limites",
		"invalid_choice":       "Valeur non autorisée",
		"invalid_email":        "Email invalide",
		"too_many_decimals":    "Deux décimales au plus",

		"order_placement_failed": "La création de la commande a échoué",
		"not_generated":          "La facture n'a pas encore été générée",
		"product_in_use":         "Produit utilisé dans une commande",
		"client_has_orders":      "Client lié à des commandes",
		"order_invoiced":         "Commande facturée",
		"insufficient_stock":     "Stock insuffisant",

		"invoice.title":          "FACTURE N° %s",
		"invoice.date":           "Date: %s",
		"invoice.due_date":       "Échéance: %s",
		"invoice.order":          "Commande: %s",
		"invoice.store":          "Magasin de Vélos - %s",
		"invoice.store_address":  "Adresse du magasin",
		"invoice.store_phone":    "Téléphone: 01 XX XX XX XX",
		"invoice.store_email":    "Email: contact@bikestore.fr",
		"invoice.client":         "Client:",
		"invoice.col.product":    "Article",
		"invoice.col.quantity":   "Qté",
		"invoice.col.unit_price": "Prix HT",
		"invoice.col.tax_rate":   "TVA",
		"invoice.col.total":      "Total TTC",
		"invoice.subtotal":       "Sous-total HT:",
		"invoice.tax":            "TVA:",
		"invoice.discount":       "Remise:",
		"invoice.total":          "TOTAL TTC:",
		"invoice.payment":        "Paiement: %s en %d fois",
		"invoice.paid":           "Payée le %s",
		"invoice.footer":         "Merci de votre confiance",
		"invoice.page":           "Page %d/{nb}",

		"payment.cash":     "espèces",
		"payment.card":     "carte bancaire",
		"payment.check":    "chèque",
		"payment.transfer": "virement",
	},
	"en": {
		"required":             "Required",
		"must_be_positive":     "Must be positive",
		"must_not_be_negative": "Must not be negative",
		"out_of_range":         "Out of range",
		"invalid_choice":       "Invalid choice",
		"invalid_email":        "Invalid email",
		"too_many_decimals":    "At most two decimals",

		"order_placement_failed": "Order placement failed",
		"not_generated":          "Invoice has not been generated yet",
		"product_in_use":         "Product is referenced by an order",
		"client_has_orders":      "Client has orders",
		"order_invoiced":         "Order is invoiced",
		"insufficient_stock":     "Insufficient stock",

		"invoice.title":          "INVOICE No. %s",
		"invoice.date":           "Date: %s",
		"invoice.due_date":       "Due: %s",
		"invoice.order":          "Order: %s",
		"invoice.store":          "Bike Store - %s",
		"invoice.store_address":  "Store address",
		"invoice.store_phone":    "Phone: 01 XX XX XX XX",
		"invoice.store_email":    "Email: contact@bikestore.fr",
		"invoice.client":         "Customer:",
		"invoice.col.product":    "Item",
		"invoice.col.quantity":   "Qty",
		"invoice.col.unit_price": "Unit excl. tax",
		"invoice.col.tax_rate":   "Tax",
		"invoice.col.total":      "Total incl. tax",
		"invoice.subtotal":       "Subtotal excl. tax:",
		"invoice.tax":            "Tax:",
		"invoice.discount":       "Discount:",
		"invoice.total":          "TOTAL INCL. TAX:",
		"invoice.payment":        "Payment: %s in %d installment(s)",
		"invoice.paid":           "Paid on %s",
		"invoice.footer":         "Thank you for your business",
		"invoice.page":           "Page %d/{nb}",

		"payment.cash":     "cash",
		"payment.card":     "card",
		"payment.check":    "check",
		"payment.transfer": "bank transfer",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
// Only the first preference is considered; anything but English falls back to French.
func DetectLanguage(header string) string {
	first := strings.TrimSpace(strings.SplitN(header, ",", 2)[0])
	first = strings.ToLower(strings.SplitN(first, ";", 2)[0])
	if strings.HasPrefix(first, "en") {
		return "en"
	}
	return DefaultLang
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// T translates code, falling back to French then to the code itself.
func T(lang, code string) string {
	if msgs, ok := catalogs[lang]; ok {
		if s, ok := msgs[code]; ok {
			return s
		}
	}
	if s, ok := catalogs[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Tf translates code and formats it with args.
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}

// Map translates every value of a field->code map, as produced by validation.
func Map(lang string, codes map[string]string) map[string]string {
	out := make(map[string]string, len(codes))
	for field, code := range codes {
		out[field] = T(lang, code)
	}
	return out
}
