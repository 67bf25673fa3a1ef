package parser

import (
	"reflect"
	"testing"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "grouped", input: "12,345", expected: 12345},
		{name: "with whitespace", input: "  27,000 ", expected: 27000},
		{name: "plain", input: "900", expected: 900},
		{name: "millions", input: "1,234,567", expected: 1234567},
		{name: "empty string", input: "", expected: 0},
		{name: "not a number", input: "품절", expected: 0},
		{name: "negative", input: "-10", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePrice(tt.input); got != tt.expected {
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSaleIndex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "korean label", input: "판매지수 1,234위", expected: 1234},
		{name: "surrounding whitespace", input: "\n\t판매지수 87,510\n", expected: 87510},
		{name: "first group wins", input: "판매지수 12 (3,000)", expected: 12},
		{name: "separator before digits", input: "판매지수, 450", expected: 450},
		{name: "no digits", input: "판매지수", expected: 0},
		{name: "empty string", input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSaleIndex(tt.input); got != tt.expected {
				t.Errorf("ParseSaleIndex(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseReviewCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "korean label", input: "리뷰 42개", expected: 42},
		{name: "bare number", input: "7", expected: 7},
		{name: "separators are not part of the run", input: "1,024", expected: 1},
		{name: "no digits", input: "리뷰 없음", expected: 0},
		{name: "empty string", input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseReviewCount(tt.input); got != tt.expected {
				t.Errorf("ParseReviewCount(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "decimal", input: "9.6", expected: 9.6},
		{name: "whitespace", input: " 10.0 ", expected: 10},
		{name: "integer", input: "8", expected: 8},
		{name: "empty string", input: "", expected: 0},
		{name: "not a number", input: "평점없음", expected: 0},
		{name: "nan", input: "NaN", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRating(tt.input); got != tt.expected {
				t.Errorf("ParseRating(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanAuthor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "trailing marker", input: "홍길동 저", expected: "홍길동"},
		{name: "surrounding whitespace", input: "\n  홍길동, 김철수 저 \n", expected: "홍길동, 김철수"},
		{name: "no marker", input: "Robert C. Martin", expected: "Robert C. Martin"},
		{name: "marker inside a name", input: "저우", expected: "저우"},
		{name: "marker glued to name", input: "김저", expected: "김저"},
		{name: "marker only", input: "저", expected: "저"},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanAuthor(tt.input); got != tt.expected {
				t.Errorf("CleanAuthor(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMissingFields(t *testing.T) {
	if got := MissingFields(models.DefaultBook()); !reflect.DeepEqual(got, models.Columns) {
		t.Fatalf("MissingFields(default) = %v, want %v", got, models.Columns)
	}

	book := models.DefaultBook()
	book.Title = "Go 언어"
	book.SalePrice = 27000
	got := MissingFields(book)
	for _, column := range got {
		if column == "title" || column == "sale_price" {
			t.Fatalf("column %q reported missing: %v", column, got)
		}
	}
	if len(got) != len(models.Columns)-2 {
		t.Fatalf("missing = %d columns, want %d", len(got), len(models.Columns)-2)
	}
}
