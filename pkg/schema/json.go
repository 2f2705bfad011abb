package schema

import (
	"bytes"
	"encoding/json"
)

// JSON encoding tags every node with its "kind". Object properties and
// Schema declarations are written in their stored order.

func (p *Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind Kind   `json:"kind"`
		Name string `json:"name"`
	}{KindPrimitive, p.Name})
}

func (l *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  Kind `json:"kind"`
		Value any  `json:"value"`
	}{KindLiteral, l.Value})
}

func (a *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    Kind `json:"kind"`
		Element Node `json:"element"`
	}{KindArray, a.Element})
}

type tupleElementJSON struct {
	Type     Node `json:"type"`
	Optional bool `json:"optional,omitempty"`
	Rest     bool `json:"rest,omitempty"`
}

func (t *Tuple) MarshalJSON() ([]byte, error) {
	elems := make([]tupleElementJSON, len(t.Elements))
	for i, el := range t.Elements {
		elems[i] = tupleElementJSON(el)
	}
	return json.Marshal(struct {
		Kind     Kind               `json:"kind"`
		Elements []tupleElementJSON `json:"elements"`
	}{KindTuple, elems})
}

type propertyJSON struct {
	Type     Node `json:"type"`
	Optional bool `json:"optional"`
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"kind":"object","properties":{`)
	var err error
	first := true
	o.Each(func(name string, p Property) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err = writeKeyValue(&buf, name, propertyJSON(p)); err != nil {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func (u *Union) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    Kind   `json:"kind"`
		Members []Node `json:"members"`
	}{KindUnion, nonNil(u.Members)})
}

func (in *Intersection) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    Kind   `json:"kind"`
		Members []Node `json:"members"`
	}{KindIntersection, nonNil(in.Members)})
}

func (r *Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind          Kind   `json:"kind"`
		Name          string `json:"name"`
		TypeArguments []Node `json:"typeArguments,omitempty"`
		Parameter     bool   `json:"parameter,omitempty"`
		External      bool   `json:"external,omitempty"`
	}{KindRef, r.Name, r.TypeArguments, r.Parameter, r.External})
}

func (g *GenericParam) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind       Kind   `json:"kind"`
		Name       string `json:"name"`
		Constraint Node   `json:"constraint,omitempty"`
		Default    Node   `json:"default,omitempty"`
	}{KindGenericParam, g.Name, g.Constraint, g.Default})
}

type templatePartJSON struct {
	Text *string `json:"text,omitempty"`
	Type Node    `json:"type,omitempty"`
}

func (t *Template) MarshalJSON() ([]byte, error) {
	parts := make([]templatePartJSON, len(t.Parts))
	for i, p := range t.Parts {
		if p.IsLiteral() {
			text := p.Text
			parts[i] = templatePartJSON{Text: &text}
			continue
		}
		parts[i] = templatePartJSON{Type: p.Type}
	}
	return json.Marshal(struct {
		Kind  Kind               `json:"kind"`
		Parts []templatePartJSON `json:"parts"`
	}{KindTemplate, parts})
}

func (d *Declaration) MarshalJSON() ([]byte, error) {
	params := d.TypeParameters
	if params == nil {
		params = []*GenericParam{}
	}
	return json.Marshal(struct {
		Name           string          `json:"name"`
		TypeParameters []*GenericParam `json:"typeParameters"`
		Body           Node            `json:"body"`
		Exported       bool            `json:"exported"`
	}{d.Name, params, d.Body, d.Exported})
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range s.Declarations() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKeyValue(&buf, d.Name, d); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKeyValue(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

func nonNil(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	return nodes
}
