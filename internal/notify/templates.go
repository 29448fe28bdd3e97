package notify

import (
	"fmt"
	"strings"
)

// formatRupiah renders 250000 as "250.000".
func formatRupiah(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out
}

func CheckoutMessage(appName, orderID string, total int64, itemList, invoiceURL string) string {
	return fmt.Sprintf(`*[%s]* Checkout berhasil dibuat 🎉
Order ID: %s
Total: Rp%s

Detail:
%s

Bayar di sini:
%s

Terima kasih 🙏`, appName, orderID, formatRupiah(total), itemList, invoiceURL)
}

func PaidMessage(appName, orderID string, total int64) string {
	return fmt.Sprintf(`*[%s]* Pembayaran LUNAS ✅
Order ID: %s
Total: Rp%s

Terima kasih! Pesananmu akan segera kami proses 🙏`, appName, orderID, formatRupiah(total))
}

func FailedMessage(appName, orderID, status string) string {
	return fmt.Sprintf(`*[%s]* Pembayaran tidak berhasil ❌
Order ID: %s
Status: %s

Silakan coba lagi atau hubungi admin.`, appName, orderID, status)
}
