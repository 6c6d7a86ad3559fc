package junit

import "encoding/xml"

// TestSuites is the document root.
type TestSuites struct {
	XMLName  xml.Name    `xml:"testsuites"`
	Name     string      `xml:"name,attr,omitempty"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Errors   int         `xml:"errors,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     string      `xml:"time,attr,omitempty"`
	Suites   []TestSuite `xml:"testsuite"`
}

type TestSuite struct {
	Name       string      `xml:"name,attr"`
	Package    string      `xml:"package,attr,omitempty"`
	Tests      int         `xml:"tests,attr"`
	Failures   int         `xml:"failures,attr"`
	Errors     int         `xml:"errors,attr"`
	Skipped    int         `xml:"skipped,attr"`
	Time       string      `xml:"time,attr,omitempty"`
	Timestamp  string      `xml:"timestamp,attr,omitempty"`
	Properties *Properties `xml:"properties,omitempty"`
	TestCases  []TestCase  `xml:"testcase"`
}

type Properties struct {
	Property []Property `xml:"property"`
}

type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type TestCase struct {
	Name              string    `xml:"name,attr"`
	Classname         string    `xml:"classname,attr"`
	Status            string    `xml:"status,attr,omitempty"`
	Time              string    `xml:"time,attr,omitempty"`
	Report            string    `xml:"report,attr,omitempty"`
	Type              string    `xml:"type,attr,omitempty"`
	StartExecDateTime string    `xml:"startExecDateTime,attr,omitempty"`
	Skipped           *Skipped  `xml:"skipped,omitempty"`
	Failures          []Failure `xml:"failure"`
	Errors            []Error   `xml:"error"`
	SystemOut         string    `xml:"system-out,omitempty"`
	SystemErr         string    `xml:"system-err,omitempty"`
}

type Skipped struct {
	Message string `xml:"message,attr,omitempty"`
}

type Failure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Text    string `xml:",chardata"`
}

type Error struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Text    string `xml:",chardata"`
}
