package dispatch

import "github.com/technvi/voicebridge/pkg/realtime"

// Tools returns the tool schemas advertised to the AI session.
func Tools() []realtime.Tool {
	return []realtime.Tool{
		{
			Type:        "function",
			Name:        FnSearchProducts,
			Description: "Search for product information in the database",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query about a product or part",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Type:        "function",
			Name:        FnCheckSlot,
			Description: "Check if a specific time slot is available for booking and book it if available",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"proposed_time": map[string]any{
						"type":        "string",
						"description": "The proposed appointment time in ISO format (e.g., '2024-05-15T14:30:00')",
					},
				},
				"required": []string{"proposed_time"},
			},
		},
		// Kept for backward compatibility with older prompts.
		{
			Type:        "function",
			Name:        FnAvailableSlots,
			Description: "Get available appointment slots from the calendar (only use if the user specifically asks for available time slots)",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
		{
			Type:        "function",
			Name:        FnBookAppointment,
			Description: "Book an appointment at the specified time (only use if check_slot_availability has already confirmed availability)",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"proposed_time": map[string]any{
						"type":        "string",
						"description": "The appointment time in ISO format (e.g., '2024-05-15T14:30:00')",
					},
					"email": map[string]any{
						"type":        "string",
						"description": "Email address for the appointment (optional)",
					},
				},
				"required": []string{"proposed_time"},
			},
		},
	}
}
