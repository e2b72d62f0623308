package ttml

import "testing"

func TestCheckWellFormed(t *testing.T) {
	valid := `<?xml version="1.0" encoding="utf-8"?>
<tt xmlns="http://www.w3.org/ns/ttml">
  <body>
    <p begin="00:01.000">word</p>
  </body>
</tt>
`
	if err := CheckWellFormed(valid); err != nil {
		t.Errorf("CheckWellFormed() on valid document = %v", err)
	}

	invalid := []string{
		"<tt><body></tt>",
		"<tt><p>unclosed</tt>",
		`<tt attr=oops></tt>`,
	}
	for _, in := range invalid {
		if err := CheckWellFormed(in); err == nil {
			t.Errorf("CheckWellFormed(%q) = nil, want error", in)
		}
	}
}
