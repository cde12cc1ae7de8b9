package records_test

import (
	"testing"

	"github.com/tallyhq/tally/internal/records"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []records.Candidate
	}{
		{
			"well formed rows",
			"product_id,product_name,quantity,price\n101,Laptop,5,1200.00\n102,Mouse,25,75.00",
			[]records.Candidate{
				{ProductID: "101", ProductName: "Laptop", Quantity: 5, Price: 1200},
				{ProductID: "102", ProductName: "Mouse", Quantity: 25, Price: 75},
			},
		},
		{
			"header only",
			"product_id,product_name,quantity,price",
			[]records.Candidate{},
		},
		{
			"empty input",
			"",
			[]records.Candidate{},
		},
		{
			"non-numeric quantity coerced to zero",
			"product_id,product_name,quantity,price\n101,Laptop,lots,1200.00",
			[]records.Candidate{
				{ProductID: "101", ProductName: "Laptop", Quantity: 0, Price: 1200},
			},
		},
		{
			"missing trailing fields coerced",
			"product_id,product_name,quantity,price\n101,Laptop",
			[]records.Candidate{
				{ProductID: "101", ProductName: "Laptop", Quantity: 0, Price: 0},
			},
		},
		{
			"columns matched by name not position",
			"price,quantity,product_name,product_id\n9.50,12,Keyboard,103",
			[]records.Candidate{
				{ProductID: "103", ProductName: "Keyboard", Quantity: 12, Price: 9.5},
			},
		},
		{
			"surrounding whitespace trimmed",
			"product_id, product_name , quantity ,price\n 101 , Laptop , 5 , 1200.00 ",
			[]records.Candidate{
				{ProductID: "101", ProductName: "Laptop", Quantity: 5, Price: 1200},
			},
		},
		{
			"unknown columns ignored",
			"product_id,product_name,quantity,price,warehouse\n101,Laptop,5,1200.00,east",
			[]records.Candidate{
				{ProductID: "101", ProductName: "Laptop", Quantity: 5, Price: 1200},
			},
		},
		{
			"blank line skipped",
			"product_id,product_name,quantity,price\n\n101,Laptop,5,1200.00",
			[]records.Candidate{
				{ProductID: "101", ProductName: "Laptop", Quantity: 5, Price: 1200},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := records.Parse(tt.text)
			if got == nil {
				t.Fatal("Parse returned nil, want empty or populated slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse returned %d candidates, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("candidate %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseRowOrder(t *testing.T) {
	text := "product_id,product_name,quantity,price\n" +
		"1,A,1,1\n2,B,2,2\n3,C,3,3"

	got := records.Parse(text)
	if len(got) != 3 {
		t.Fatalf("Parse returned %d candidates, want 3", len(got))
	}
	for i, want := range []string{"1", "2", "3"} {
		if got[i].ProductID != want {
			t.Errorf("candidate %d ProductID = %q, want %q", i, got[i].ProductID, want)
		}
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"\"unterminated,quote\n101,Laptop",
		"product_id,product_name,quantity,price\n\"bad,row",
		",,,\n,,,",
		"\x00\x01\x02",
	}

	for _, input := range inputs {
		if got := records.Parse(input); got == nil {
			t.Errorf("Parse(%q) returned nil", input)
		}
	}
}
