package client

import "encoding/json"

// SearchResponse is the body of an initial search or a scroll page.
type SearchResponse struct {
	ScrollID string       `json:"_scroll_id"`
	Hits     HitsEnvelope `json:"hits"`
}

// HitsEnvelope wraps the hit list. Total is kept raw because pre-7.x
// clusters report a number and 7.x+ report an object.
type HitsEnvelope struct {
	Total json.RawMessage `json:"total"`
	Hits  []Hit           `json:"hits"`
}

// Hit is a single matched document.
type Hit struct {
	Index  string          `json:"_index"`
	Type   string          `json:"_type"`
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// ClusterHealth represents the response from /_cluster/health.
type ClusterHealth struct {
	ClusterName         string `json:"cluster_name"`
	Status              string `json:"status"`
	NumberOfNodes       int    `json:"number_of_nodes"`
	NumberOfDataNodes   int    `json:"number_of_data_nodes"`
	ActivePrimaryShards int    `json:"active_primary_shards"`
	ActiveShards        int    `json:"active_shards"`
	RelocatingShards    int    `json:"relocating_shards"`
	UnassignedShards    int    `json:"unassigned_shards"`
}

// NodeInfo represents a single node entry from /_cat/nodes.
type NodeInfo struct {
	NodeRole string `json:"node.role"`
	Name     string `json:"name"`
	IP       string `json:"ip"`
}

// IndexInfo represents a single index entry from /_cat/indices.
type IndexInfo struct {
	Health    string `json:"health"`
	Status    string `json:"status"`
	Index     string `json:"index"`
	Pri       string `json:"pri"`
	Rep       string `json:"rep"`
	DocsCount string `json:"docs.count"`
	StoreSize string `json:"store.size"`
}
