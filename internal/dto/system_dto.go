package dto

type HealthResponse struct {
	Status         string `json:"status"`
	Storage        string `json:"storage"`
	KnowledgeSize  int    `json:"knowledge_entries"`
	PromptsLoaded  int    `json:"prompts_loaded"`
	IndexDimension int    `json:"index_dimension"`
}

type ReloadResponse struct {
	KnowledgeEntries int  `json:"knowledge_entries"`
	Prompts          int  `json:"prompts"`
	Broadcast        bool `json:"broadcast"`
}
