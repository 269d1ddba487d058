package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexa-labs/cortexa/internal/domain"
)

func TestConversationMemory_BoundHoldsAfterOverflow(t *testing.T) {
	for _, capacity := range []int{1, 2, 4, 7} {
		t.Run(fmt.Sprintf("capacity_%d", capacity), func(t *testing.T) {
			memory := NewConversationMemory(capacity)

			total := capacity + 3
			for i := 0; i < total; i++ {
				memory.Append(domain.NewUserTurn(fmt.Sprintf("turn-%d", i)))
			}

			recent := memory.Recent()
			require.Len(t, recent, capacity)

			// The oldest entries were evicted first; the survivors keep
			// their original relative order.
			for i, turn := range recent {
				assert.Equal(t, fmt.Sprintf("turn-%d", total-capacity+i), turn.Text)
			}
		})
	}
}

func TestConversationMemory_RecentIsPureRead(t *testing.T) {
	memory := NewConversationMemory(4)
	memory.Append(domain.NewUserTurn("question"))
	memory.Append(domain.NewAssistantTurn("answer"))

	first := memory.Recent()
	first[0] = domain.NewUserTurn("mutated")

	second := memory.Recent()
	assert.Equal(t, "question", second[0].Text)
	assert.Len(t, second, 2)
}

func TestConversationMemory_Clear(t *testing.T) {
	memory := NewConversationMemory(4)
	memory.Append(domain.NewUserTurn("question"))
	memory.Clear()

	assert.Empty(t, memory.Recent())

	memory.Append(domain.NewUserTurn("after clear"))
	assert.Len(t, memory.Recent(), 1)
}

func TestConversationMemory_DefaultCapacity(t *testing.T) {
	memory := NewConversationMemory(0)
	assert.Equal(t, DefaultMemoryCapacity, memory.Capacity())
	assert.NotEmpty(t, memory.SessionID())
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No previous conversation", FormatHistory(nil))

	turns := []domain.Turn{
		domain.NewUserTurn("What is AOV?"),
		domain.NewAssistantTurn("Average order value."),
	}
	assert.Equal(t, "User: What is AOV?\nAssistant: Average order value.", FormatHistory(turns))
}
