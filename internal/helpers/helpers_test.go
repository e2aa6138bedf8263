package helpers

import (
	"testing"

	"github.com/fgoll/source-code-plan/internal/logger"
	"github.com/fgoll/source-code-plan/internal/test"
)

func TestQuote(t *testing.T) {
	test.AssertEqual(t, QuoteForJSON("a\"b\\c\n"), `"a\"b\\c\n"`)
	test.AssertEqual(t, QuoteForJSON("it's"), `"it's"`)
	test.AssertEqual(t, QuoteSingle("it's"), `'it\'s'`)
	test.AssertEqual(t, QuoteSingle("say \"hi\""), `'say "hi"'`)
	test.AssertEqual(t, QuoteForJSON("\x01"), `"\u0001"`)
	test.AssertEqual(t, QuoteForJSON("\uFEFF"), `"\uFEFF"`)
	test.AssertEqual(t, QuoteForJSON("é"), `"é"`)
}

func TestJoiner(t *testing.T) {
	j := Joiner{}
	test.AssertEqual(t, j.Done(), "")
	j.EnsureNewlineAtEnd()
	test.AssertEqual(t, j.Length(), 0)

	j.AddString("var a;")
	test.AssertEqual(t, j.Done(), "var a;")
	j.AddString("")
	j.EnsureNewlineAtEnd()
	j.AddString("var b;\n")
	j.EnsureNewlineAtEnd()
	test.AssertEqual(t, j.Length(), len("var a;\nvar b;\n"))
	test.AssertEqual(t, j.Done(), "var a;\nvar b;\n")
}

func TestTimer(t *testing.T) {
	var nilTimer *Timer
	nilTimer.Begin("ignored")
	nilTimer.End("ignored")

	log := logger.NewDeferLog()
	timer := &Timer{}
	timer.Begin("Build")
	timer.Begin("Scan")
	timer.End("Scan")
	timer.End("Build")
	timer.Log(log)

	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	test.AssertEqual(t, msgs[0].Kind, logger.Debug)
}
