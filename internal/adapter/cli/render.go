package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/niksmo/techstore/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	accent = lipgloss.Color("63")
	faint  = lipgloss.Color("245")
	danger = lipgloss.Color("203")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle  = lipgloss.NewStyle().Foreground(faint)
	errorStyle  = lipgloss.NewStyle().Foreground(danger)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func price(v float64) string {
	return money(decimal.NewFromFloat(v))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderListing(w io.Writer, l domain.Listing, f domain.Filter) {
	fmt.Fprintln(w, titleStyle.Render(
		fmt.Sprintf("Products (%d of %d)", len(l.Products), l.Total),
	))

	names := []string{domain.AllCategories}
	for _, c := range l.Categories {
		names = append(names, c.Name)
	}
	fmt.Fprintln(w, mutedStyle.Render("Categories: "+strings.Join(names, " · ")))

	if len(l.Products) == 0 {
		msg := "No products match"
		if f.Search != "" {
			msg += fmt.Sprintf(" %q", f.Search)
		}
		fmt.Fprintln(w, msg+".")
		return
	}

	t := newTable("ID", "Name", "Category", "Price", "Stock")
	for _, p := range l.Products {
		stock := strconv.Itoa(p.Stock)
		if !p.InStock() {
			stock = "out of stock"
		}
		t.Row(
			strconv.FormatInt(p.ID, 10), p.Name, p.CategoryName(), price(p.Price), stock,
		)
	}
	fmt.Fprintln(w, t.Render())
}

func renderProduct(w io.Writer, p domain.Product) {
	lines := []string{
		titleStyle.Render(p.Name),
		mutedStyle.Render(p.CategoryName()),
		"",
		"Price: " + price(p.Price),
		"Stock: " + strconv.Itoa(p.Stock),
	}
	if p.Description != "" {
		lines = append(lines, "", p.Description)
	}
	if p.Image != "" {
		lines = append(lines, "", mutedStyle.Render(p.Image))
	}
	if !p.InStock() {
		lines = append(lines, "", errorStyle.Render("Out of stock"))
	}
	fmt.Fprintln(w, cardStyle.Render(strings.Join(lines, "\n")))
}

func renderCart(w io.Writer, c domain.Cart, t domain.Totals) {
	fmt.Fprintln(w, titleStyle.Render("Shopping cart"))

	if c.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty. Browse products with `techstore products`.")
		return
	}

	tbl := newTable("#", "Product", "Category", "Price", "Qty", "Amount")
	for i, l := range c.Lines {
		tbl.Row(
			strconv.Itoa(i+1),
			l.Product.Name,
			l.Product.CategoryName(),
			price(l.Product.Price),
			strconv.Itoa(l.Quantity),
			money(l.Amount()),
		)
	}
	fmt.Fprintln(w, tbl.Render())
	renderTotals(w, t)
}

func renderTotals(w io.Writer, t domain.Totals) {
	rate := domain.TaxRate().Mul(decimal.NewFromInt(100)).String()
	summary := strings.Join([]string{
		fmt.Sprintf("Subtotal (%d items): %s", t.Items, money(t.Subtotal)),
		fmt.Sprintf("VAT (%s%%): %s", rate, money(t.Tax)),
		titleStyle.Render("Total: " + money(t.Total)),
	}, "\n")
	fmt.Fprintln(w, cardStyle.Render(summary))
}

func renderUser(w io.Writer, u domain.User) {
	lines := []string{
		titleStyle.Render(u.FullName()),
		"Email: " + u.Email,
	}
	if u.Telephone != "" {
		lines = append(lines, "Telephone: "+u.Telephone)
	}
	fmt.Fprintln(w, cardStyle.Render(strings.Join(lines, "\n")))
}

func renderDashboard(w io.Writer, d domain.Dashboard) {
	name := d.User.Name
	if name == "" {
		name = "user"
	}
	fmt.Fprintln(w, titleStyle.Render("Welcome back, "+name))
	renderUser(w, d.User)
	fmt.Fprintf(w, "Cart: %d lines, %d items\n", d.Cart.Lines, d.Cart.Items)
	if d.Cart.Lines != 0 {
		renderTotals(w, d.Cart)
	}
}

func renderError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}
