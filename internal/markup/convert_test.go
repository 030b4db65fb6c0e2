package markup

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

const nbsp = "\u00a0"

func mustHTML(t *testing.T, d *Document) string {
	t.Helper()
	out, err := d.HTML()
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	return out
}

func TestConvert_InventoryList(t *testing.T) {
	raw := " Bedroom" + strings.Repeat(" ", 121) + "Score: 0        Moves: 13\n" +
		"\n" +
		"You have:\n" +
		"  a splitting headache\n" +
		"  no tea\n" +
		"  your gown (being worn)\n" +
		"\n" +
		"> "

	doc, status := Convert(raw, Status{})

	testutil.AssertEqual(t, "location", doc.Location, "Bedroom")
	testutil.AssertEqual(t, "score", doc.Score, "Score: 0        Moves: 13")
	testutil.AssertEqual(t, "cached location", status.Location, "Bedroom")
	testutil.AssertEqual(t, "cached score", status.Score, "Score: 0        Moves: 13")

	exp := `<div><div class="location">Bedroom</div><div class="score">Score: 0        Moves: 13</div>` +
		`<p>You have:<br/>` + nbsp + ` a splitting headache<br/>` + nbsp + ` no tea<br/>` + nbsp + ` your gown (being worn)</p></div>`
	testutil.AssertEqual(t, "html", mustHTML(t, doc), exp)
}

func TestConvert_NoStatusLine(t *testing.T) {
	prev := Status{Location: "Bedroom", Score: "Score: 0   Moves: 2"}

	doc, status := Convert("You're not holding your gown.\n\n> ", prev)

	testutil.AssertEqual(t, "html", mustHTML(t, doc), `<div><p>You&#39;re not holding your gown.</p></div>`)
	testutil.AssertEqual(t, "status preserved", status, prev)
}

func TestConvert_LocationContinuationAndTitle(t *testing.T) {
	raw := "   Broken Top Boulevard, Outside No. 15" + strings.Repeat(" ", 96) + "Time:  2:26 pm\n" +
		"   - in the black chevy\n" +
		strings.Repeat(" ", 107) + "[For a closer description of something, EXAMINE it.]\n" +
		".\n" +
		"     MAKE IT GOOD\n" +
		"        By Jon Ingold\n" +
		"\n" +
		"     -- Release 13 / Serial number 090921 / Inform v6.21 Library 6/10\n" +
		"\n" +
		"  Broken Top Boulevard, Outside No. 15 (in the black chevy)\n" +
		"  The boulevard through the windscreen is lined with ash trees, thick trunks casting shadows and gnarled roots mangling up the sidewalk. You're sat in your car,\n" +
		"  parked too high up the kerb; just outside the gate to No. 15. Just an ordinary house. With a body inside.\n" +
		"\n" +
		"  \"Oh, Inspector. Word is, if you don't crack this one, you're out of a job.\"\n" +
		"\n" +
		"  The glove compartment is closed. Sat on the passenger seat is a whiskey bottle.\n" +
		"\n" +
		"> > "

	doc, status := Convert(raw, Status{})

	testutil.AssertEqual(t, "cached location", status.Location, "Broken Top Boulevard, Outside No. 15 (in the black chevy)")
	testutil.AssertEqual(t, "cached score", status.Score, "Time:  2:26 pm")

	exp := `<div title="[For a closer description of something, EXAMINE it.]">` +
		`<div class="location">Broken Top Boulevard, Outside No. 15 (in the black chevy)</div>` +
		`<div class="score">Time:  2:26 pm</div>` +
		`<p>` + nbsp + `  MAKE IT GOOD<br/>` + nbsp + ` ` + nbsp + ` ` + nbsp + ` By Jon Ingold</p>` +
		`<p>` + nbsp + `  -- Release 13 / Serial number 090921 / Inform v6.21 Library 6/10</p>` +
		`<p>The boulevard through the windscreen is lined with ash trees, thick trunks casting shadows and gnarled roots mangling up the sidewalk. You&#39;re sat in your car,` + "\n" +
		`parked too high up the kerb; just outside the gate to No. 15. Just an ordinary house. With a body inside.</p>` +
		`<p>&#34;Oh, Inspector. Word is, if you don&#39;t crack this one, you&#39;re out of a job.&#34;</p>` +
		`<p>The glove compartment is closed. Sat on the passenger seat is a whiskey bottle.</p>` +
		`</div>`
	testutil.AssertEqual(t, "html", mustHTML(t, doc), exp)
}

func TestConvert_StatusSuppressedWhenUnchanged(t *testing.T) {
	raw := "Bedroom                Score: 0   Moves: 13\n\nYou have:\n  a splitting headache\n  no tea\n\n> "

	first, status := Convert(raw, Status{})
	testutil.AssertEqual(t, "first location", first.Location, "Bedroom")
	testutil.AssertEqual(t, "first score", first.Score, "Score: 0   Moves: 13")
	testutil.AssertEqual(t, "first blocks", len(first.Blocks), 1)
	testutil.AssertEqual(t, "first block lines", len(first.Blocks[0].Lines), 3)

	second, status2 := Convert(raw, status)
	testutil.AssertEqual(t, "second location", second.Location, "")
	testutil.AssertEqual(t, "second score", second.Score, "")
	testutil.AssertEqual(t, "second blocks", len(second.Blocks), 1)
	testutil.AssertEqual(t, "status unchanged", status2, status)
}

func TestConvert_OnlyChangedFieldEmitted(t *testing.T) {
	prev := Status{Location: "Bedroom", Score: "Score: 0   Moves: 1"}

	doc, status := Convert("Bedroom                Score: 0   Moves: 2\n\nTime passes.\n> ", prev)

	testutil.AssertEqual(t, "location", doc.Location, "")
	testutil.AssertEqual(t, "score", doc.Score, "Score: 0   Moves: 2")
	testutil.AssertEqual(t, "status", status, Status{Location: "Bedroom", Score: "Score: 0   Moves: 2"})
}

func TestConvert_EmptyResponse(t *testing.T) {
	tests := map[string]string{
		"prompt only":     "\n> ",
		"nothing":         "",
		"dots and blanks": ".\n\n.\n>",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			doc, status := Convert(raw, Status{Location: "Kitchen"})

			testutil.AssertEqual(t, "empty", doc.Empty(), true)
			testutil.AssertEqual(t, "blocks", len(doc.Blocks), 0)
			testutil.AssertEqual(t, "html", mustHTML(t, doc), "<div></div>")
			testutil.AssertEqual(t, "status", status.Location, "Kitchen")
		})
	}
}

func TestConvert_Body(t *testing.T) {
	tests := map[string]struct {
		raw     string
		expHTML string
	}{
		"location echo dropped": {
			raw:     "Kitchen                Score: 0   Moves: 3\n\n<b>Kitchen</b>\nThe kitchen is a mess.\n>",
			expHTML: `<div><div class="location">Kitchen</div><div class="score">Score: 0   Moves: 3</div><p>The kitchen is a mess.</p></div>`,
		},
		"emphasis seams stitched": {
			raw:     "It is <i>very</i><i> dark</i> and <b>cold</b><b>.</b>\n>",
			expHTML: `<div><p>It is <i>very dark</i> and <b>cold.</b></p></div>`,
		},
		"hint line becomes paragraph title": {
			raw:     "You wake up.\n[Type HELP for instructions.]\n>",
			expHTML: `<div><p title="[Type HELP for instructions.]">You wake up.</p></div>`,
		},
		"blank lines split paragraphs": {
			raw:     "First.\n\n\n\nSecond.\n>",
			expHTML: `<div><p>First.</p><p>Second.</p></div>`,
		},
		"dot line is blank": {
			raw:     "First.\n.\nSecond.\n>",
			expHTML: `<div><p>First.</p><p>Second.</p></div>`,
		},
		"base indent stripped": {
			raw:     "    One.\n      Two.\n>",
			expHTML: `<div><p>One.<br/>` + nbsp + ` Two.</p></div>`,
		},
		"closing tag before prompt kept": {
			raw:     "You see a <b>lamp</b>\n> ",
			expHTML: `<div><p>You see a <b>lamp</b></p></div>`,
		},
		"trailing arrow kept": {
			raw:     "The arrow points -->\n> ",
			expHTML: `<div><p>The arrow points --&gt;</p></div>`,
		},
		"markup escaped": {
			raw:     "A & B < C\n>",
			expHTML: `<div><p>A &amp; B &lt; C</p></div>`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc, _ := Convert(tt.raw, Status{})
			testutil.AssertEqual(t, "html", mustHTML(t, doc), tt.expHTML)
		})
	}
}

func TestTrimPrompt(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"bare prompt":          {in: "Hello.\n>", exp: "Hello."},
		"prompt with space":    {in: "Hello.\r\n> ", exp: "Hello."},
		"only a prompt":        {in: "> ", exp: ""},
		"stacked prompts":      {in: "Hello.\n>\n>>", exp: "Hello."},
		"closing tag":          {in: "<i>dark</i>\n>", exp: "<i>dark</i>"},
		"closing tag no break": {in: "<i>dark</i>", exp: "<i>dark</i>"},
		"arrow":                {in: "go -->", exp: "go -->"},
		"spaced prompt":        {in: "Hello. >", exp: "Hello."},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "trimmed", trimPrompt(tt.in), tt.exp)
		})
	}
}

func TestConvert_ShortLinesKeepBreaks(t *testing.T) {
	long := strings.Repeat("word ", 12)
	raw := "Roses are red,\nViolets are blue.\n" + long + "\n" + long + "\n>"

	doc, _ := Convert(raw, Status{})

	testutil.AssertEqual(t, "blocks", len(doc.Blocks), 1)
	lines := doc.Blocks[0].Lines
	testutil.AssertEqual(t, "line count", len(lines), 4)
	testutil.AssertEqual(t, "short line breaks", lines[0].Break, true)
	testutil.AssertEqual(t, "second short line breaks", lines[1].Break, true)
	testutil.AssertEqual(t, "long line flows", lines[2].Break, false)
	testutil.AssertEqual(t, "last line never breaks", lines[3].Break, false)
}

func TestConvert_IndentedFirstLineIsNotStatus(t *testing.T) {
	doc, status := Convert("        Chapter One\n\nIt begins.\n>", Status{})

	testutil.AssertEqual(t, "location", doc.Location, "")
	testutil.AssertEqual(t, "status", status, Status{})
	testutil.AssertEqual(t, "blocks", len(doc.Blocks), 2)
}

func TestDocument_PlainText(t *testing.T) {
	raw := "Bedroom                Score: 0   Moves: 13\n\nYou have:\n  a <b>splitting</b> headache\n  no tea\n\n> "

	doc, _ := Convert(raw, Status{})

	exp := "== Bedroom ==\nScore: 0   Moves: 13\n\nYou have:\n  a splitting headache\n  no tea"
	testutil.AssertEqual(t, "plain", doc.PlainText(), exp)
}
