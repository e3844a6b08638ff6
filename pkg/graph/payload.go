package graph

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// SubjectStatements are the statements sharing one subject.
type SubjectStatements struct {
	Subject    string
	Statements []Statement
}

// PredicateTargets lists the subjects one predicate links to.
type PredicateTargets struct {
	Predicate string
	Targets   []string
}

// SubjectEdges are the outgoing links of one subject.
type SubjectEdges struct {
	Subject    string
	Predicates []PredicateTargets
}

// Payload is the document the fetch collaborator returns:
//
//	{
//	  "statementsBySubject": {"<subject>": [{subject, predicate, object}, ...]},
//	  "edgesBySubject":      {"<subject>": {"<predicate>": ["<target>", ...]}},
//	  "status_code": 200, "uri": "...", "error": ""
//	}
//
// Subjects keep the order they appear in, which is the order nodes are
// built and returned in.
type Payload struct {
	Subjects   []SubjectStatements
	Edges      []SubjectEdges
	StatusCode int
	URI        string
	Error      string

	subjectIdx map[string]int
	edgeIdx    map[string]int
}

// AddStatement files a statement under its subject.
func (p *Payload) AddStatement(st Statement) {
	p.addStatement(st.Subject, st)
}

func (p *Payload) addStatement(subject string, st Statement) {
	i := p.subjectIndex(subject)
	p.Subjects[i].Statements = append(p.Subjects[i].Statements, st)
}

func (p *Payload) subjectIndex(subject string) int {
	if p.subjectIdx == nil {
		p.subjectIdx = make(map[string]int, len(p.Subjects))
		for i, s := range p.Subjects {
			p.subjectIdx[s.Subject] = i
		}
	}
	i, ok := p.subjectIdx[subject]
	if !ok {
		i = len(p.Subjects)
		p.Subjects = append(p.Subjects, SubjectStatements{Subject: subject})
		p.subjectIdx[subject] = i
	}
	return i
}

// AddEdge records that subject links to target through predicate.
func (p *Payload) AddEdge(subject, predicate, target string) {
	if p.edgeIdx == nil {
		p.edgeIdx = make(map[string]int, len(p.Edges))
		for i, e := range p.Edges {
			p.edgeIdx[e.Subject] = i
		}
	}
	i, ok := p.edgeIdx[subject]
	if !ok {
		i = len(p.Edges)
		p.Edges = append(p.Edges, SubjectEdges{Subject: subject})
		p.edgeIdx[subject] = i
	}

	edges := &p.Edges[i]
	for j := range edges.Predicates {
		if edges.Predicates[j].Predicate == predicate {
			edges.Predicates[j].Targets = append(edges.Predicates[j].Targets, target)
			return
		}
	}
	edges.Predicates = append(edges.Predicates, PredicateTargets{Predicate: predicate, Targets: []string{target}})
}

// Statements returns the statements filed under subject.
func (p *Payload) Statements(subject string) []Statement {
	for _, s := range p.Subjects {
		if s.Subject == subject {
			return s.Statements
		}
	}
	return nil
}

// Err returns the upstream error embedded in the payload, if any.
// Status codes >= 500 are server errors, 300-499 client errors; any other
// non-empty error field is reported verbatim.
func (p *Payload) Err() error {
	if p.StatusCode >= 300 || p.Error != "" {
		return classifyUpstream(p.StatusCode, p.Error)
	}
	return nil
}

// DecodePayload decodes a payload document, keeping subjects in document
// order. Both "status_code" and "statusCode" are accepted.
func DecodePayload(data []byte) (*Payload, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedPayload)
	}

	p := &Payload{
		URI:   root.Get("uri").String(),
		Error: root.Get("error").String(),
	}

	status := root.Get("status_code")
	if !status.Exists() {
		status = root.Get("statusCode")
	}
	p.StatusCode = int(status.Int())

	if err := p.decodeStatements(root.Get("statementsBySubject")); err != nil {
		return nil, err
	}
	if err := p.decodeEdges(root.Get("edgesBySubject")); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Payload) decodeStatements(field gjson.Result) error {
	if !field.Exists() || field.Type == gjson.Null {
		return nil
	}
	if !field.IsObject() {
		return fmt.Errorf("%w: statementsBySubject must be an object", ErrMalformedPayload)
	}

	var err error
	field.ForEach(func(key, list gjson.Result) bool {
		subject := key.String()
		if !list.IsArray() {
			err = fmt.Errorf("%w: statements of %s must be an array", ErrMalformedPayload, subject)
			return false
		}
		p.subjectIndex(subject)
		list.ForEach(func(_, item gjson.Result) bool {
			if !item.IsObject() {
				err = fmt.Errorf("%w: statement of %s must be an object", ErrMalformedPayload, subject)
				return false
			}
			st := Statement{
				Subject:   item.Get("subject").String(),
				Predicate: item.Get("predicate").String(),
				Object:    item.Get("object").String(),
			}
			if st.Subject == "" {
				st.Subject = subject
			}
			p.addStatement(subject, st)
			return true
		})
		return err == nil
	})
	return err
}

func (p *Payload) decodeEdges(field gjson.Result) error {
	if !field.Exists() || field.Type == gjson.Null {
		return nil
	}
	if !field.IsObject() {
		return fmt.Errorf("%w: edgesBySubject must be an object", ErrMalformedPayload)
	}

	var err error
	field.ForEach(func(key, predicates gjson.Result) bool {
		subject := key.String()
		if !predicates.IsObject() {
			err = fmt.Errorf("%w: edges of %s must be an object", ErrMalformedPayload, subject)
			return false
		}
		predicates.ForEach(func(predicate, targets gjson.Result) bool {
			if !targets.IsArray() {
				err = fmt.Errorf("%w: targets of %s %s must be an array", ErrMalformedPayload, subject, predicate.String())
				return false
			}
			for _, target := range targets.Array() {
				p.AddEdge(subject, predicate.String(), target.String())
			}
			return true
		})
		return err == nil
	})
	return err
}

// UnmarshalJSON implements json.Unmarshaler via DecodePayload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	decoded, err := DecodePayload(data)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

// MarshalJSON writes the payload document with subjects in order.
func (p *Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"statementsBySubject":{`)
	for i, s := range p.Subjects {
		if i > 0 {
			buf.WriteByte(',')
		}
		statements := s.Statements
		if statements == nil {
			statements = []Statement{}
		}
		data, err := marshalJSON(statements)
		if err != nil {
			return nil, fmt.Errorf("marshal statements of %s: %w", s.Subject, err)
		}
		writeJSONString(&buf, s.Subject)
		buf.WriteByte(':')
		buf.Write(data)
	}

	buf.WriteString(`},"edgesBySubject":{`)
	for i, e := range p.Edges {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, e.Subject)
		buf.WriteString(":{")
		for j, pt := range e.Predicates {
			if j > 0 {
				buf.WriteByte(',')
			}
			targets := pt.Targets
			if targets == nil {
				targets = []string{}
			}
			data, err := marshalJSON(targets)
			if err != nil {
				return nil, fmt.Errorf("marshal edges of %s: %w", e.Subject, err)
			}
			writeJSONString(&buf, pt.Predicate)
			buf.WriteByte(':')
			buf.Write(data)
		}
		buf.WriteByte('}')
	}

	buf.WriteString(`},"status_code":`)
	fmt.Fprintf(&buf, "%d", p.StatusCode)
	buf.WriteString(`,"uri":`)
	writeJSONString(&buf, p.URI)
	buf.WriteString(`,"error":`)
	writeJSONString(&buf, p.Error)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
