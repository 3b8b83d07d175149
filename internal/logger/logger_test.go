package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferLogSortsMessages(t *testing.T) {
	log := NewDeferLog()
	log.AddMsg(Msg{Kind: Warning, Text: "late", Location: &MsgLocation{File: "b.js", Line: 2}})
	log.AddMsg(Msg{Kind: Error, Text: "early", Location: &MsgLocation{File: "a.js", Line: 9}})
	log.AddMsg(Msg{Kind: Error, Text: "no location"})

	assert.True(t, log.HasErrors())
	msgs := log.Done()
	require.Len(t, msgs, 3)
	assert.Equal(t, "no location", msgs[0].Text)
	assert.Equal(t, "early", msgs[1].Text)
	assert.Equal(t, "late", msgs[2].Text)
}

func TestLocationForRange(t *testing.T) {
	source := &Source{
		PrettyPath: "src/entry.js",
		Contents:   "const a = 1\nimport {b} from 'x'\n",
	}

	loc := LocationForRange(source, Range{Loc: Loc{Start: 12}, Len: 6})
	require.NotNil(t, loc)
	assert.Equal(t, "src/entry.js", loc.File)
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 0, loc.Column)
	assert.Equal(t, 6, loc.Length)
	assert.Equal(t, "import {b} from 'x'", loc.LineText)

	assert.Nil(t, LocationForRange(nil, Range{}))
}

func TestRangeOfString(t *testing.T) {
	source := &Source{Contents: `import {a} from "x\"y"`}
	r := source.RangeOfString(Loc{Start: 16})
	assert.Equal(t, `"x\"y"`, source.TextForRange(r))
}

func TestStderrLogSilent(t *testing.T) {
	log := NewStderrLog(StderrOptions{Color: ColorNever, LogLevel: LevelSilent})
	log.AddMsg(Msg{Kind: Warning, Text: "a warning"})
	assert.False(t, log.HasErrors())

	log.AddMsg(Msg{Kind: Error, Text: "an error", Location: &MsgLocation{File: "a.js", Line: 1}})
	assert.True(t, log.HasErrors())

	// Messages without a location sort first
	msgs := log.Done()
	require.Len(t, msgs, 2)
	assert.Equal(t, "a warning", msgs[0].Text)
	assert.Equal(t, "an error", msgs[1].Text)
}

func TestMsgString(t *testing.T) {
	noColor := TerminalInfo{}

	msg := Msg{Kind: Error, Text: "it broke"}
	assert.Equal(t, "error: it broke\n", msg.String(StderrOptions{}, noColor))

	msg = Msg{Kind: Warning, Text: "watch out", Location: &MsgLocation{
		File:     "src/entry.js",
		Line:     2,
		Column:   4,
		Length:   3,
		LineText: "    bad()",
	}}
	assert.Equal(t, "src/entry.js: warning: watch out\n",
		msg.String(StderrOptions{}, noColor))
	assert.Equal(t,
		"src/entry.js:2:4: warning: watch out\n    bad()\n    ~~~\n",
		msg.String(StderrOptions{IncludeSource: true}, noColor))

	// Color escapes only appear when the terminal supports them
	colored := msg.String(StderrOptions{}, TerminalInfo{UseColorEscapes: true})
	assert.Contains(t, colored, colorMagenta)
	assert.Contains(t, colored, colorReset)
}

func TestAddRangeMessages(t *testing.T) {
	source := &Source{
		PrettyPath: "src/entry.js",
		Contents:   "import 'x'\n",
	}

	log := NewDeferLog()
	log.AddRangeError(source, Range{Loc: Loc{Start: 7}, Len: 3}, "bad path")
	log.AddRangeWarning(source, Range{Loc: Loc{Start: 0}, Len: 6}, "odd import")

	msgs := log.Done()
	require.Len(t, msgs, 2)
	assert.Equal(t, Warning, msgs[0].Kind)
	assert.Equal(t, 0, msgs[0].Location.Column)
	assert.Equal(t, Error, msgs[1].Kind)
	assert.Equal(t, 7, msgs[1].Location.Column)
	assert.Equal(t, 3, msgs[1].Location.Length)
	assert.Equal(t, "import 'x'", msgs[1].Location.LineText)
}

func TestPathSortOrder(t *testing.T) {
	file := Path{Text: "/a.js", Namespace: "file"}
	virtual := Path{Text: "runtime", Namespace: "virtual"}

	// Higher namespaces sort first so generated modules precede files
	assert.True(t, virtual.ComesBeforeInSortedOrder(file))
	assert.False(t, file.ComesBeforeInSortedOrder(virtual))
	assert.True(t, Path{Text: "/a.js", Namespace: "file"}.ComesBeforeInSortedOrder(
		Path{Text: "/b.js", Namespace: "file"}))
}

func TestMsgsToError(t *testing.T) {
	assert.NoError(t, MsgsToError(nil))
	assert.NoError(t, MsgsToError([]Msg{{Kind: Warning, Text: "just a warning"}}))

	err := MsgsToError([]Msg{
		{Kind: Warning, Text: "a warning"},
		{Kind: Error, Text: "the failure", Location: &MsgLocation{File: "entry.js"}},
	})
	require.Error(t, err)
	assert.Equal(t, "entry.js: the failure", err.Error())

	var withMsgs *ErrorWithMsgs
	require.ErrorAs(t, err, &withMsgs)
	assert.Len(t, withMsgs.Msgs, 2)
}
