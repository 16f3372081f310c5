package chat

import "github.com/futig/chatbot-backend/internal/entity"

// toHistoryResponse converts session turns to the API history payload
func toHistoryResponse(sessionID string, turns []entity.Turn) entity.HistoryResponse {
	dtos := make([]entity.TurnDTO, 0, len(turns))
	for _, t := range turns {
		dtos = append(dtos, entity.TurnDTO{
			Role: string(t.Role),
			Text: t.Text,
		})
	}
	return entity.HistoryResponse{
		SessionID: sessionID,
		Turns:     dtos,
	}
}
