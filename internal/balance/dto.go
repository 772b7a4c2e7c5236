package balance

// LineResponse represents one counterpart in a summary response
type LineResponse struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Amount  string `json:"amount"`
	Message string `json:"message"`
	Former  bool   `json:"former_member,omitempty"`
}

// SummaryResponse represents the settle-up summary of the caller in a group
type SummaryResponse struct {
	GroupID       int64           `json:"group_id"`
	Balances      []*LineResponse `json:"balances"`
	TotalOwedToMe string          `json:"total_owed_to_you"`
	TotalIOwe     string          `json:"total_you_owe"`
}

// ToResponse converts a Summary to a SummaryResponse DTO
func (s *Summary) ToResponse() *SummaryResponse {
	resp := &SummaryResponse{
		GroupID:       s.GroupID,
		Balances:      make([]*LineResponse, len(s.Lines)),
		TotalOwedToMe: s.OwedToViewer.StringFixed(2),
		TotalIOwe:     s.OwedByViewer.StringFixed(2),
	}
	for i, l := range s.Lines {
		resp.Balances[i] = &LineResponse{
			UserID:  l.UserID,
			Name:    l.Name,
			Status:  string(l.Status),
			Amount:  l.Amount.StringFixed(2),
			Message: l.Message,
			Former:  l.Former,
		}
	}
	return resp
}
