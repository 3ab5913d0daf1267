package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Ensure Elastic implements Index
var _ Index = (*Elastic)(nil)

// Elastic talks to an Elasticsearch index over its REST API. One document is
// kept per entry, keyed by entry id, and every Register refreshes the index
// so the write is immediately searchable.
type Elastic struct {
	baseURL string
	index   string
	client  *http.Client
	maxSize int
}

// NewElastic creates a new Elastic index client
func NewElastic(baseURL, indexName string, maxResults int) *Elastic {
	return &Elastic{
		baseURL: strings.TrimRight(baseURL, "/"),
		index:   indexName,
		client:  &http.Client{Timeout: 30 * time.Second},
		maxSize: maxResults,
	}
}

func (e *Elastic) Register(entryID uint, doc *Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/_doc/%d?refresh=true", e.baseURL, e.index, entryID)
	resp, err := e.do(http.MethodPut, url, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("index register failed for entry %d: %s", entryID, resp.Status)
	}
	return nil
}

func (e *Elastic) Delete(entryID uint) error {
	url := fmt.Sprintf("%s/%s/_doc/%d?refresh=true", e.baseURL, e.index, entryID)
	resp, err := e.do(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// Deleting an absent document is fine.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("index delete failed for entry %d: %s", entryID, resp.Status)
	}
	return nil
}

func (e *Elastic) Search(q *Query) (*Result, error) {
	body, err := json.Marshal(e.buildRequest(q))
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/_search", e.baseURL, e.index)
	resp, err := e.do(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// A missing index means nothing has been registered yet.
	if resp.StatusCode == http.StatusNotFound {
		return &Result{}, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("index search failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string   `json:"_id"`
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, err
	}

	result := &Result{Total: parsed.Hits.Total.Value}
	for _, hit := range parsed.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		result.Hits = append(result.Hits, Hit{EntryID: uint(id), Doc: hit.Source})
	}
	return result, nil
}

func (e *Elastic) do(method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return resp, nil
}

type m = map[string]interface{}

func (e *Elastic) buildRequest(q *Query) m {
	filter := []interface{}{
		m{"nested": m{
			"path":  "entity",
			"query": m{"terms": m{"entity.id": q.EntityIDs}},
		}},
	}

	if len(q.Name) > 0 {
		filter = append(filter, alternativesQuery(q.Name, "name"))
	}

	if len(q.Attrs) > 0 {
		attrQueries := make([]interface{}, 0, len(q.Attrs))
		for i := range q.Attrs {
			attrQueries = append(attrQueries, attrQuery(&q.Attrs[i]))
		}
		if q.link() == LinkAnd {
			filter = append(filter, attrQueries...)
		} else {
			filter = append(filter, m{"bool": m{
				"should":               attrQueries,
				"minimum_should_match": 1,
			}})
		}
	}

	return m{
		"size":  e.maxSize,
		"query": m{"bool": m{"filter": filter}},
		"sort":  []interface{}{m{"name": m{"order": "asc"}}},
	}
}

func attrQuery(filter *AttrFilter) m {
	inner := m{
		"filter": []interface{}{
			m{"term": m{"attr.name": filter.Name}},
			alternativesQuery(filter.Alternatives, "attr.value"),
		},
	}
	return m{"nested": m{"path": "attr", "query": m{"bool": inner}}}
}

// alternativesQuery compiles an OR-of-AND-groups term tree: alternatives are
// should clauses, the terms inside one alternative are filter clauses.
func alternativesQuery(alternatives [][]Term, field string) m {
	should := make([]interface{}, 0, len(alternatives))
	for _, group := range alternatives {
		terms := make([]interface{}, 0, len(group))
		for _, term := range group {
			terms = append(terms, termQuery(term, field))
		}
		should = append(should, m{"bool": m{"filter": terms}})
	}
	return m{"bool": m{"should": should, "minimum_should_match": 1}}
}

func termQuery(term Term, field string) m {
	switch term.Kind {
	case TermEmpty:
		return m{"term": m{field: ""}}
	case TermDateBefore:
		return m{"range": m{dateField(field): m{"lt": term.Date.Format("2006-01-02")}}}
	case TermDateAfter:
		return m{"range": m{dateField(field): m{"gt": term.Date.Format("2006-01-02")}}}
	case TermDateOn:
		day := term.Date.Format("2006-01-02")
		return m{"range": m{dateField(field): m{"gte": day, "lte": day}}}
	}
	return m{"regexp": m{field: ".*" + escapeRegexp(strings.ToLower(term.Text)) + ".*"}}
}

func dateField(field string) string {
	if strings.HasPrefix(field, "attr.") {
		return "attr.date_value"
	}
	return field
}

var regexpSpecials = `.?+*|{}[]()"\#@&<>~`

// escapeRegexp neutralizes the index's pattern metacharacters so keywords
// always match literally.
func escapeRegexp(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(regexpSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
