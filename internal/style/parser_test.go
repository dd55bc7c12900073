package style

import "testing"

func TestParseStylesheet_RootVars(t *testing.T) {
	sheet, err := ParseStylesheet(`
		:root {
			--accent: #ff0000;
			--gap: 2;
		}
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sheet.RootVars["accent"] != "#ff0000" {
		t.Errorf("accent = %q, want #ff0000", sheet.RootVars["accent"])
	}
	if sheet.RootVars["gap"] != "2" {
		t.Errorf("gap = %q, want 2", sheet.RootVars["gap"])
	}
}

func TestParseStylesheet_RuleAndImportant(t *testing.T) {
	sheet, err := ParseStylesheet(`
		Button.primary {
			color: red !important;
			width: 10;
		}
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(sheet.Rules))
	}
	rule := sheet.Rules[0]
	if len(rule.Decls) != 2 {
		t.Fatalf("len(Decls) = %d, want 2", len(rule.Decls))
	}
	var sawImportant bool
	for _, d := range rule.Decls {
		if d.Property == PropColor {
			if !d.Important {
				t.Errorf("color declaration should be !important")
			}
			sawImportant = true
		}
	}
	if !sawImportant {
		t.Errorf("color declaration not found")
	}
}

func TestParseStylesheet_MarginShorthandExpands(t *testing.T) {
	sheet, err := ParseStylesheet(`Label { margin: 1; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rules[0].Decls) != 4 {
		t.Fatalf("len(Decls) = %d, want 4 (one per side)", len(sheet.Rules[0].Decls))
	}
	for _, d := range sheet.Rules[0].Decls {
		if d.RawValue != "1" {
			t.Errorf("side value = %q, want 1", d.RawValue)
		}
	}
}

func TestParseStylesheet_CommentsStripped(t *testing.T) {
	sheet, err := ParseStylesheet(`
		/* a leading comment */
		Label {
			/* inline */
			color: blue;
		}
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rules) != 1 || len(sheet.Rules[0].Decls) != 1 {
		t.Fatalf("unexpected parse result: %+v", sheet.Rules)
	}
}

func TestParseStylesheet_UnknownProperty(t *testing.T) {
	_, err := ParseStylesheet(`Label { not-a-real-prop: 1; }`)
	if err == nil {
		t.Fatalf("expected error for unknown property")
	}
}

func TestParseStylesheet_UnclosedBrace(t *testing.T) {
	_, err := ParseStylesheet(`Label { color: red;`)
	if err == nil {
		t.Fatalf("expected error for unclosed brace")
	}
}

func TestParseStylesheet_VarDeclaration(t *testing.T) {
	sheet, err := ParseStylesheet(`Label { --local: 5; width: var(--local); }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decls := sheet.Rules[0].Decls
	if len(decls) != 2 {
		t.Fatalf("len(Decls) = %d, want 2", len(decls))
	}
	if !decls[0].IsVar || decls[0].VarName != "local" {
		t.Errorf("first decl should be the --local var, got %+v", decls[0])
	}
}
