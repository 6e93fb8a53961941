package price

import (
	"fmt"
	"strings"
	"time"
)

// maxListed caps how many records a single reply shows.
const maxListed = 10

// FormatReply renders a query result as a WhatsApp message. Deterministic
// given the payload.
func FormatReply(res *QueryResult, product, clientName string) string {
	if res == nil || len(res.Records) == 0 {
		return fmt.Sprintf("Opa, %s! 😔 Não encontrei \"%s\" no Popular Supermercado nos últimos 3 dias. Pode ser que o produto não tenha sido vendido recentemente ou tenha outro nome. Tente pesquisar com uma descrição mais específica (ex: \"arroz pilão 1kg\")!", clientName, product)
	}

	records := res.Records
	if len(records) > maxListed {
		records = records[:maxListed]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 *Popular Supermercado* - Encontrei %d resultado(s) para \"%s\" nos últimos 3 dias:\n\n", res.Total, product)

	for i, r := range records {
		// The standardized (Sefaz) description tends to be cleaner than
		// the merchant's raw one; prefer it when present.
		desc := strings.TrimSpace(r.StandardizedDescription)
		if desc == "" {
			desc = r.Description
		}
		if desc == "" {
			desc = "Produto"
		}
		fmt.Fprintf(&b, "%d. 📦 *%s*\n", i+1, desc)
		fmt.Fprintf(&b, "   💰 %s", formatMoney(r.Price))
		if r.Unit != "" {
			fmt.Fprintf(&b, " por %s", r.Unit)
		}
		if r.GTIN != "" && r.GTIN != "0" {
			fmt.Fprintf(&b, " (Cód: %s)", r.GTIN)
		}
		fmt.Fprintf(&b, "\n   📅 Preço atualizado em: %s\n\n", formatSaleDate(r.SaleDate))
	}

	if res.Total > maxListed {
		fmt.Fprintf(&b, "📊 Mostrando os %d primeiros de %d resultados encontrados.\n\n", maxListed, res.Total)
	}

	b.WriteString("🏪 *Popular Supermercado* - Arapiraca/AL\n")
	b.WriteString("💡 _Preços baseados em vendas reais dos últimos 3 dias. Os valores podem variar._\n\n")
	fmt.Fprintf(&b, "Precisa de mais alguma coisa, %s? 😊", clientName)
	return b.String()
}

func formatMoney(v float64) string {
	if v <= 0 {
		return "Preço não informado"
	}
	return strings.Replace(fmt.Sprintf("R$ %.2f", v), ".", ",", 1)
}

var saleDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func formatSaleDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Data não informada"
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return raw
}
