package qti

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/answerkey"
)

const manifestXML = `<?xml version="1.0"?>
<manifest>
  <resources>
    <resource identifier="q1" type="imsqti_item_xmlv2p1" href="items/q1.xml"><file href="items/q1.xml"/></resource>
    <resource identifier="q2" type="imsqti_item_xmlv2p1" href="items/q2.xml"><file href="items/q2.xml"/></resource>
    <resource identifier="q3" type="imsqti_item_xmlv2p1" href="items/q3.xml"><file href="items/q3.xml"/></resource>
    <resource identifier="q4" type="imsqti_item_xmlv2p1" href="items/q4.xml"><file href="items/q4.xml"/></resource>
  </resources>
</manifest>`

const singleXML = `<assessmentItem identifier="q1" title="Listes">
  <responseDeclaration identifier="RESPONSE" cardinality="single">
    <correctResponse><value>B</value></correctResponse>
  </responseDeclaration>
  <itemBody>
    <p>Quel type est <code>[1, 2]</code> ?</p>
    <choiceInteraction responseIdentifier="RESPONSE" maxChoices="1">
      <simpleChoice identifier="A">un tuple</simpleChoice>
      <simpleChoice identifier="B">une <b>liste</b></simpleChoice>
    </choiceInteraction>
  </itemBody>
</assessmentItem>`

const multiXML = `<assessmentItem identifier="q2">
  <responseDeclaration identifier="RESPONSE" cardinality="multiple">
    <correctResponse><value>A</value><value>C</value></correctResponse>
  </responseDeclaration>
  <itemBody>
    <choiceInteraction responseIdentifier="RESPONSE">
      <prompt>Quels types sont mutables ?</prompt>
      <simpleChoice identifier="A">list</simpleChoice>
      <simpleChoice identifier="B">tuple</simpleChoice>
      <simpleChoice identifier="C">dict</simpleChoice>
    </choiceInteraction>
  </itemBody>
</assessmentItem>`

const textXML = `<assessmentItem identifier="q3">
  <responseDeclaration identifier="RESPONSE" cardinality="single">
    <correctResponse><value> 42 </value></correctResponse>
  </responseDeclaration>
  <itemBody><p>Que vaut 6 &amp;times; 7 ?</p><textEntryInteraction responseIdentifier="RESPONSE"/></itemBody>
</assessmentItem>`

const essayXML = `<assessmentItem identifier="q4">
  <itemBody><p>Expliquez.</p><extendedTextInteraction responseIdentifier="RESPONSE"/></itemBody>
</assessmentItem>`

func buildPackage(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestParseItemChoice(t *testing.T) {
	it, err := ParseItem([]byte(singleXML))
	require.NoError(t, err)
	assert.Equal(t, "q1", it.ID)
	assert.Equal(t, InteractionChoiceSingle, it.Kind)
	assert.Equal(t, []string{"B"}, it.Correct)
	require.Len(t, it.Choices, 2)
	assert.Equal(t, "Quel type est [1, 2] ?", Text(it.PromptHTML))
	assert.Equal(t, "une liste", Text(it.Choices[1].Label))
}

func TestParseItemPromptElement(t *testing.T) {
	it, err := ParseItem([]byte(multiXML))
	require.NoError(t, err)
	assert.Equal(t, InteractionChoiceMulti, it.Kind)
	assert.Equal(t, "Quels types sont mutables ?", Text(it.PromptHTML))
}

func TestConvert(t *testing.T) {
	pkg := buildPackage(t, map[string]string{
		"imsmanifest.xml": manifestXML,
		"items/q1.xml":    singleXML,
		"items/q2.xml":    multiXML,
		"items/q3.xml":    textXML,
		"items/q4.xml":    essayXML,
	})
	doc, skipped, err := Convert(pkg, pkg.Size())
	require.NoError(t, err)
	assert.Equal(t, []Skipped{{ID: "q4", Reason: "no response key"}}, skipped)

	key, err := answerkey.Parse(doc, answerkey.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, key.Len())

	a, ok := key.Lookup("Quel type est [1, 2] ?")
	require.True(t, ok)
	assert.True(t, a.Equal(answer.Single("une liste")))

	a, ok = key.Lookup("Quels types sont mutables ?")
	require.True(t, ok)
	assert.True(t, a.Equal(answer.Multiple("list", "dict")))

	a, ok = key.Lookup("Que vaut 6 &times; 7 ?")
	require.True(t, ok)
	assert.True(t, a.Equal(answer.Single("42")))
}

func TestReadPackageNoManifest(t *testing.T) {
	pkg := buildPackage(t, map[string]string{"items/q1.xml": singleXML})
	_, err := ReadPackage(pkg, pkg.Size())
	assert.ErrorIs(t, err, ErrNoManifest)
}

func TestReadPackageRejectsEscapingHref(t *testing.T) {
	mf := `<manifest><resources><resource identifier="x" href="../../etc/x.xml"/></resources></manifest>`
	pkg := buildPackage(t, map[string]string{"imsmanifest.xml": mf})
	_, err := ReadPackage(pkg, pkg.Size())
	assert.ErrorContains(t, err, "escapes the package")
}

func TestEntriesSkipsDuplicates(t *testing.T) {
	it, err := ParseItem([]byte(singleXML))
	require.NoError(t, err)
	dup := it
	dup.ID = "q1-copy"
	entries, skipped := Entries([]Item{it, dup})
	assert.Len(t, entries, 1)
	assert.Equal(t, []Skipped{{ID: "q1-copy", Reason: "duplicate prompt"}}, skipped)
}

func TestText(t *testing.T) {
	cases := map[string]string{
		"  plain   text ":                   "plain text",
		"<p>a</p><p>b</p>":                  "a b",
		"x <script>alert(1)</script>y":      "x y",
		"l&#39;index <code>i</code>":        "l'index i",
		"<ul><li>un</li><li>deux</li></ul>": "un deux",
	}
	for in, want := range cases {
		assert.Equal(t, want, Text(in), in)
	}
}
