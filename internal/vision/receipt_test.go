package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReceipt(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Receipt
	}{
		{
			name: "sample receipt",
			text: SampleReceiptText,
			want: Receipt{Store: "Coffee House", Date: "2024-12-01 10:30 AM", Total: "100,000"},
		},
		{
			name: "english total, case insensitive",
			text: "Corner Shop\n01.02.24\nMilk 2.50\nTOTAL 12.75 EUR\nTotal paid 20",
			want: Receipt{Store: "Corner Shop", Date: "01.02.24", Total: "12.75"},
		},
		{
			name: "slashed date",
			text: "Bakery\nDate: 2023/7/4\nTotal: 9",
			want: Receipt{Store: "Bakery", Date: "Date: 2023/7/4", Total: "9"},
		},
		{
			name: "total line without number",
			text: "Kiosk\nTotal due\nTotal 5",
			want: Receipt{Store: "Kiosk"},
		},
		{
			name: "no date or total",
			text: "just a note",
			want: Receipt{Store: "just a note"},
		},
		{
			name: "empty",
			text: "",
			want: Receipt{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReceipt(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReceipt_Empty(t *testing.T) {
	assert.True(t, Receipt{}.Empty())
	assert.False(t, Receipt{Total: "1"}.Empty())
}
