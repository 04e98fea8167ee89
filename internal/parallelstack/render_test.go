package parallelstack

import (
	"strings"
	"testing"

	"github.com/getsentry/parallelstacks/internal/backtrace"
)

func fixtureTree() *Node {
	return Aggregate([]backtrace.Thread{
		thread("1", "ccc", "bbb", "aaa", "zzz"),
		thread("2", "ccc", "bbb", "aaa", "zzz"),
		thread("3", "iii", "hhh", "zzz"),
	})
}

func TestWriteText(t *testing.T) {
	want := strings.Join([]string{
		"  zzz",
		"    aaa",
		"      bbb",
		"        ccc",
		"    hhh",
		"      iii",
		"",
	}, "\n")
	if got := fixtureTree().String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	if got := Aggregate(nil).String(); got != "" {
		t.Fatalf("expected no output for an empty tree, got %q", got)
	}
}

func TestWriteDOT(t *testing.T) {
	var b strings.Builder
	if err := fixtureTree().WriteDOT(&b); err != nil {
		t.Fatal(err)
	}
	got := b.String()

	for _, want := range []string{
		"digraph G {\n  rankdir=BT;\n",
		"  table_0 [label=<\n",
		`<td COLSPAN="2" BORDER="0">3 Threads</td>`,
		`<td COLSPAN="2" BORDER="0">2 Threads</td>`,
		`<td COLSPAN="2" BORDER="0">1 Thread</td>`,
		"  table_0 -> table_1 [arrowsize=2 minlen=2]\n",
		"  table_0 -> table_2 [arrowsize=2 minlen=2]\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}

	// rows are listed innermost first
	ccc := strings.Index(got, `<td SIDES="T">3</td><td SIDES="LT">ccc</td>`)
	aaa := strings.Index(got, `<td SIDES="T">1</td><td SIDES="LT">aaa</td>`)
	if ccc == -1 || aaa == -1 || ccc > aaa {
		t.Fatalf("unexpected row order:\n%s", got)
	}
	if strings.Count(got, "[label=<") != 3 {
		t.Fatalf("expected 3 tables, got:\n%s", got)
	}
}

func TestWriteDOTEscapesFunctions(t *testing.T) {
	root := Aggregate([]backtrace.Thread{thread("1", "std::vector<int>::push_back")})
	var b strings.Builder
	if err := root.WriteDOT(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "std::vector&lt;int&gt;::push_back") {
		t.Fatalf("function wasn't escaped:\n%s", b.String())
	}
}
