package taijs

import (
	"errors"
	"testing"
)

func TestLex(t *testing.T) {
	tokens, err := Lex("var a = 0x1f + .5e1; // done\nb >>>= 'x\\ty'")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		kind TokenKind
		text string
	}{
		{TokenKeyword, "var"},
		{TokenIdent, "a"},
		{TokenPunct, "="},
		{TokenNumber, "0x1f"},
		{TokenPunct, "+"},
		{TokenNumber, ".5e1"},
		{TokenPunct, ";"},
		{TokenComment, "// done"},
		{TokenIdent, "b"},
		{TokenPunct, ">>>="},
		{TokenString, "'x\\ty'"},
		{TokenEOF, ""},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %v", tokens)
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Text != w.text {
			t.Fatalf("%d: got %v, want %s %q", i, tokens[i], w.kind, w.text)
		}
	}

	if v := tokens[3].Value; v != 31.0 {
		t.Fatalf("got %v", v)
	}
	if v := tokens[5].Value; v != 5.0 {
		t.Fatalf("got %v", v)
	}
	if v := tokens[10].Value; v != "x\ty" {
		t.Fatalf("got %q", v)
	}
	if tokens[7].NewlineBefore || !tokens[8].NewlineBefore {
		t.Fatal("bad newline flags")
	}
	if tokens[1].Start != 4 || tokens[1].End != 5 {
		t.Fatalf("got %+v", tokens[1])
	}
}

func TestLexStrings(t *testing.T) {
	cases := map[string]string{
		`"plain"`:        "plain",
		`'single "q"'`:   `single "q"`,
		`"esc \" \\ \n"`: "esc \" \\ \n",
		`"\x41é"`:        "Aé",
		`"中文"`:           "中文",
		"'line\\\ncont'": "linecont",
	}
	for src, want := range cases {
		tokens, err := Lex(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if tokens[0].Kind != TokenString || tokens[0].Value != want {
			t.Fatalf("%s: got %q", src, tokens[0].Value)
		}
	}
}

func TestLexBlockCommentNewline(t *testing.T) {
	tokens, err := Lex("a /* x\n y */ b /* z */ c")
	if err != nil {
		t.Fatal(err)
	}
	// a, comment, b, comment, c, EOF
	if len(tokens) != 6 {
		t.Fatalf("got %v", tokens)
	}
	if !tokens[2].NewlineBefore {
		t.Fatal("expected newline before b")
	}
	if tokens[4].NewlineBefore {
		t.Fatal("unexpected newline before c")
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		src    string
		offset int
		line   int
		column int
	}{
		{`var s = "abc`, 8, 1, 9},
		{"var s = 'a\nb'", 8, 1, 9},
		{"x\n/* open", 2, 2, 1},
		{"var a = 3in", 9, 1, 10},
		{"a # b", 2, 1, 3},
		{`"\u12"`, 3, 1, 4},
		{"1e+", 0, 1, 1},
	}
	for _, c := range cases {
		_, err := Lex(c.src)
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("%q: got %v", c.src, err)
		}
		if lexErr.Offset != c.offset || lexErr.Line != c.line || lexErr.Column != c.column {
			t.Fatalf("%q: got %+v", c.src, lexErr)
		}
	}
}
