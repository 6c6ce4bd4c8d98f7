package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/mind-engage/mindengage-qbank/internal/exam"
)

// BuildPackage writes an IMS content package: a manifest plus one QTI 2.1
// choice item per question. Explanations become modal feedback.
func BuildPackage(ex exam.Exam) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	mf := imsManifest{
		Xmlns:      "http://www.imsglobal.org/xsd/imscp_v1p1",
		Identifier: "MANIFEST-" + ex.ID,
		Resources:  []imsResource{},
	}
	for _, q := range ex.Questions {
		itemName := fmt.Sprintf("items/%s.xml", q.ID)
		mf.Resources = append(mf.Resources, imsResource{
			Identifier: q.ID,
			Type:       "imsqti_item_xmlv2p1",
			Href:       itemName,
			Files:      []imsFile{{Href: itemName}},
		})
		w, err := zw.Create(itemName)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, buildItemXML(ex.Title, q)); err != nil {
			return nil, err
		}
	}

	mfw, err := zw.Create("imsmanifest.xml")
	if err != nil {
		return nil, err
	}
	b, err := xml.MarshalIndent(mf, "", "  ")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(mfw, xml.Header); err != nil {
		return nil, err
	}
	if _, err := mfw.Write(b); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type imsManifest struct {
	XMLName    xml.Name      `xml:"manifest"`
	Xmlns      string        `xml:"xmlns,attr,omitempty"`
	Identifier string        `xml:"identifier,attr"`
	Resources  []imsResource `xml:"resources>resource"`
}
type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}
type imsFile struct {
	Href string `xml:"href,attr"`
}

func buildItemXML(examTitle string, q exam.Question) string {
	card, maxChoices := "single", 1
	if q.Type == "mcq_multi" {
		card, maxChoices = "multiple", 0
	}
	title := q.ID
	if q.SourceOrdinal != "" {
		title = fmt.Sprintf("%s #%s", examTitle, q.SourceOrdinal)
	}

	var choices strings.Builder
	for _, c := range q.Choices {
		fmt.Fprintf(&choices, "\n      <simpleChoice identifier=\"%s\">%s</simpleChoice>", esc(c.ID), c.LabelHTML)
	}
	var correct strings.Builder
	for _, v := range q.AnswerKey {
		fmt.Fprintf(&correct, "<value>%s</value>", esc(v))
	}
	var meta strings.Builder
	if q.Subject != "" {
		fmt.Fprintf(&meta, "\n    <p class=\"subject\">%s</p>", esc(q.Subject))
	}
	if q.Difficulty > 0 {
		fmt.Fprintf(&meta, "\n    <p class=\"difficulty\">%d</p>", q.Difficulty)
	}
	var feedback string
	if q.Explanation != "" {
		feedback = fmt.Sprintf(`
  <modalFeedback outcomeIdentifier="FEEDBACK" identifier="EXPLANATION" showHide="show">%s</modalFeedback>`, esc(q.Explanation))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<assessmentItem identifier="%s" title="%s" adaptive="false" timeDependent="false" xmlns="http://www.imsglobal.org/xsd/imsqti_v2p1">
  <responseDeclaration identifier="RESPONSE" cardinality="%s" baseType="identifier">
    <correctResponse>%s</correctResponse>
  </responseDeclaration>
  <outcomeDeclaration identifier="FEEDBACK" cardinality="single" baseType="identifier"/>
  <itemBody>%s
    <p>%s</p>
    <choiceInteraction responseIdentifier="RESPONSE" shuffle="false" maxChoices="%d">%s
    </choiceInteraction>
  </itemBody>%s
</assessmentItem>`,
		esc(q.ID), esc(title), card, correct.String(), meta.String(), q.PromptHTML, maxChoices, choices.String(), feedback,
	)
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
