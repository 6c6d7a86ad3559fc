package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/zinc-sig/ftlaunch/internal/outcome"
)

// SLAGoalResult is one service-level goal evaluated by a performance run.
type SLAGoalResult struct {
	TransactionName string
	Percentile      string
	FullName        string
	Measurement     string
	GoalValue       string
	ActualValue     string
	Status          string
}

// GeneralInfo holds run-level facts from a performance report.
type GeneralInfo struct {
	VUsersCount int
}

// EvaluateSLA computes the state of an SLA tree rooted at node. A leaf element
// whose text is "failed" fails, and any failing descendant fails its ancestors.
// The description names the first failing goal.
func EvaluateSLA(node *xmlquery.Node) (outcome.TestState, string) {
	if node == nil {
		return outcome.StateFailed, ""
	}

	if !hasElementChildren(node) {
		if strings.EqualFold(strings.TrimSpace(node.InnerText()), "failed") {
			return outcome.StateFailed, slaRuleDescription(node)
		}
		return outcome.StatePassed, ""
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		state, desc := EvaluateSLA(child)
		if state == outcome.StateFailed {
			if desc == "" {
				desc = slaRuleDescription(node)
			}
			return outcome.StateFailed, desc
		}
	}
	return outcome.StatePassed, ""
}

func hasElementChildren(node *xmlquery.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

func slaRuleDescription(node *xmlquery.Node) string {
	if !hasAttr(node, "FullName") {
		return ""
	}
	return fmt.Sprintf("SLA rule %q failed: goal value %q, actual value %q",
		node.SelectAttr("FullName"), node.SelectAttr("GoalValue"), node.SelectAttr("ActualValue"))
}

func hasAttr(node *xmlquery.Node, name string) bool {
	for _, a := range node.Attr {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

func loadXML(path string) (*xmlquery.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func documentElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// evaluateSLAFile evaluates one SLA document.
func evaluateSLAFile(path string) (outcome.TestState, string, error) {
	doc, err := loadXML(path)
	if err != nil {
		return outcome.StateUnknown, "", err
	}
	state, desc := EvaluateSLA(documentElement(doc))
	return state, desc, nil
}

// LoadSLAGoals reads the goals of a performance run from RunReport.xml, or from
// SLA.xml when no run report exists. A missing or unreadable report yields no goals.
func LoadSLAGoals(dir string) (GeneralInfo, []SLAGoalResult, error) {
	var info GeneralInfo

	var sla *xmlquery.Node
	runReport := filepath.Join(dir, RunReportXML)
	slaFile := filepath.Join(dir, SLAXML)

	switch {
	case fileExists(runReport):
		doc, err := loadXML(runReport)
		if err != nil {
			return info, nil, err
		}
		root := documentElement(doc)
		if root == nil {
			return info, nil, nil
		}
		if vusers := xmlquery.FindOne(root, "General/VUsers"); vusers != nil {
			if n, err := strconv.Atoi(strings.TrimSpace(vusers.SelectAttr("Count"))); err == nil {
				info.VUsersCount = n
			}
		}
		sla = xmlquery.FindOne(root, "SLA")
	case fileExists(slaFile):
		doc, err := loadXML(slaFile)
		if err != nil {
			return info, nil, err
		}
		sla = documentElement(doc)
	}

	if sla == nil {
		return info, nil, nil
	}

	var goals []SLAGoalResult
	for _, n := range xmlquery.Find(sla, "SLA_GOAL") {
		goals = append(goals, SLAGoalResult{
			TransactionName: n.SelectAttr("TransactionName"),
			Percentile:      n.SelectAttr("Percentile"),
			FullName:        n.SelectAttr("FullName"),
			Measurement:     n.SelectAttr("Measurement"),
			GoalValue:       n.SelectAttr("GoalValue"),
			ActualValue:     n.SelectAttr("ActualValue"),
			Status:          n.InnerText(),
		})
	}
	return info, goals, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
