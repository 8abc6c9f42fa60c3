package engine

import "testing"

func TestParseSearchResponse(t *testing.T) {
	data := []byte(`{
		"took": 5,
		"timed_out": false,
		"hits": {
			"total": {"value": 2, "relation": "eq"},
			"max_score": 1.3,
			"hits": [
				{"_index": "posts", "_id": "1", "_score": 1.3, "_source": {"title": "a"}},
				{"_index": "posts", "_id": "2", "_routing": "u1", "_score": null, "sort": [1700000000, "b"]}
			]
		},
		"aggregations": {"colors": {"buckets": []}}
	}`)

	resp, err := ParseSearchResponse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total() != 2 || resp.Hits.Total.Relation != "eq" {
		t.Errorf("total = %+v", resp.Hits.Total)
	}
	if len(resp.Hits.Hits) != 2 {
		t.Fatalf("hits = %d", len(resp.Hits.Hits))
	}
	first := resp.Hits.Hits[0]
	if first.Score == nil || *first.Score != 1.3 {
		t.Errorf("score = %v", first.Score)
	}
	if string(first.Source) != `{"title": "a"}` {
		t.Errorf("source = %s", first.Source)
	}
	second := resp.Hits.Hits[1]
	if second.Score != nil || second.Routing != "u1" || len(second.Sort) != 2 {
		t.Errorf("hit = %+v", second)
	}
	if ref := second.Ref(); ref.Index != "posts" || ref.ID != "2" {
		t.Errorf("ref = %+v", ref)
	}
	if _, ok := resp.Aggregations["colors"]; !ok {
		t.Error("aggregations not decoded")
	}
}

func TestParseSearchResponse_Invalid(t *testing.T) {
	if _, err := ParseSearchResponse([]byte(`[`)); err == nil {
		t.Fatal("expected error")
	}
}
