// Package analytics deriva estatísticas, padrões de procrastinação,
// rebalanceamento de prioridades e sentimento a partir do histórico de
// tarefas. Todas as funções são puras: recebem um snapshot imutável e o
// instante de referência, não tocam rede nem estado compartilhado.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ThensiB/Task-Recommendation/models"
)

// Mensagens exibidas ao usuário nos relatórios de padrões.
const (
	msgNotEnoughTasks     = "Not enough task history to detect patterns yet."
	msgNotEnoughCompleted = "Complete a few more tasks to unlock procrastination insights."
	msgNoPatterns         = "No procrastination patterns detected. Keep up the good work!"

	recGeneric  = "Keep organizing your day with clear priorities."
	recPomodoro = "Try the Pomodoro technique: 25 minutes of focused work followed by a short break."
)

// Sentimentos possíveis da mensagem motivacional.
const (
	SentimentCelebratory  = "celebratory"
	SentimentEncouraging  = "encouraging"
	SentimentUrgent       = "urgent"
	SentimentMotivational = "motivational"
	SentimentNeutral      = "neutral"
)

// PriorityBreakdown traz os números por faixa de prioridade usados no
// relatório. As taxas de conclusão são percentuais inteiros arredondados.
type PriorityBreakdown struct {
	HighTotal       int `json:"high_total"`
	HighCompleted   int `json:"high_completed"`
	HighRate        int `json:"high_completion_rate"`
	MediumTotal     int `json:"medium_total"`
	MediumCompleted int `json:"medium_completed"`
	MediumRate      int `json:"medium_completion_rate"`
	LowTotal        int `json:"low_total"`
	LowCompleted    int `json:"low_completed"`
	LowRate         int `json:"low_completion_rate"`
	Overdue         int `json:"overdue"`
}

// ProcrastinationReport é o resultado da detecção de padrões. HasPatterns
// falso cobre tanto a falta de histórico quanto a ausência de padrões; a
// mensagem distingue os casos.
type ProcrastinationReport struct {
	HasPatterns     bool               `json:"has_patterns"`
	Message         string             `json:"message"`
	Patterns        []string           `json:"patterns,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Stats           *PriorityBreakdown `json:"stats,omitempty"`
}

// GetStats conta o total de tarefas e quantas estão concluídas e pendentes.
func GetStats(tasks []models.Task) models.TaskStats {
	stats := models.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusPending:
			stats.Pending++
		}
	}
	return stats
}

// CountOverdue conta tarefas pendentes cuja data de vencimento é uma data
// válida já passada em relação a now.
func CountOverdue(tasks []models.Task, now time.Time) int {
	today := now.Format(models.DueDateLayout)
	overdue := 0
	for _, t := range tasks {
		if t.Status != models.StatusPending || t.DueDate == "" {
			continue
		}
		if _, err := time.Parse(models.DueDateLayout, t.DueDate); err != nil {
			continue
		}
		if t.DueDate < today {
			overdue++
		}
	}
	return overdue
}

// DetectProcrastinationPatterns avalia as quatro regras de padrão de forma
// independente e reporta todas as que casarem. Menos de 3 tarefas no total
// devolve o resultado de histórico insuficiente; menos de 2 concluídas
// limita a análise à regra de tarefas atrasadas.
func DetectProcrastinationPatterns(tasks []models.Task, now time.Time) ProcrastinationReport {
	if len(tasks) < 3 {
		return ProcrastinationReport{HasPatterns: false, Message: msgNotEnoughTasks}
	}

	var completed int
	var highTotal, highCompleted, mediumTotal, mediumCompleted, lowTotal, lowCompleted int
	for _, t := range tasks {
		isCompleted := t.Status == models.StatusCompleted
		if isCompleted {
			completed++
		}
		switch t.Priority {
		case models.PriorityHigh:
			highTotal++
			if isCompleted {
				highCompleted++
			}
		case models.PriorityMedium:
			mediumTotal++
			if isCompleted {
				mediumCompleted++
			}
		case models.PriorityLow:
			lowTotal++
			if isCompleted {
				lowCompleted++
			}
		}
	}

	highRate := completionRate(highCompleted, highTotal)
	mediumRate := completionRate(mediumCompleted, mediumTotal)
	lowRate := completionRate(lowCompleted, lowTotal)
	overdue := CountOverdue(tasks, now)

	stats := &PriorityBreakdown{
		HighTotal:       highTotal,
		HighCompleted:   highCompleted,
		HighRate:        roundPercent(highRate),
		MediumTotal:     mediumTotal,
		MediumCompleted: mediumCompleted,
		MediumRate:      roundPercent(mediumRate),
		LowTotal:        lowTotal,
		LowCompleted:    lowCompleted,
		LowRate:         roundPercent(lowRate),
		Overdue:         overdue,
	}

	var patterns, recommendations []string

	// As regras baseadas em taxa de conclusão precisam de pelo menos 2
	// tarefas concluídas para dizer algo útil; a regra de atraso não depende
	// do histórico de conclusão e vale sempre.
	enoughCompleted := completed >= 2

	if enoughCompleted && lowCompleted > highCompleted && highTotal > 0 && lowTotal > 0 {
		patterns = append(patterns, "You complete low-priority tasks before high-priority ones")
		recommendations = append(recommendations, "Tackle your most important high-priority task first thing in the day")
	}
	if enoughCompleted && highRate < 0.5 && highTotal >= 3 {
		patterns = append(patterns, "You complete fewer than half of your high-priority tasks")
		recommendations = append(recommendations, "Break high-priority tasks into smaller, more manageable steps")
	}
	if overdue > 2 {
		patterns = append(patterns, fmt.Sprintf("You have %d overdue tasks", overdue))
		recommendations = append(recommendations, "Set more realistic deadlines and block time in your calendar for focused work")
	}
	if enoughCompleted && lowRate > highRate && mediumRate > highRate && highTotal > 1 {
		patterns = append(patterns, "You tend to complete easier tasks first regardless of priority")
		recommendations = append(recommendations, "Start your day with the hardest task before moving to easier ones")
	}

	if !enoughCompleted && len(patterns) == 0 {
		return ProcrastinationReport{HasPatterns: false, Message: msgNotEnoughCompleted}
	}
	if len(patterns) == 0 {
		return ProcrastinationReport{
			HasPatterns:     false,
			Message:         msgNoPatterns,
			Recommendations: []string{recGeneric},
			Stats:           stats,
		}
	}
	if len(recommendations) == 0 {
		recommendations = []string{recPomodoro}
	}

	return ProcrastinationReport{
		HasPatterns:     true,
		Message:         fmt.Sprintf("Detected %d procrastination pattern(s) in your task history.", len(patterns)),
		Patterns:        patterns,
		Recommendations: recommendations,
		Stats:           stats,
	}
}

// GenerateMotivationalSentiment classifica o humor da mensagem para o
// usuário. As regras são avaliadas nesta ordem exata, a primeira que casar
// vence.
func GenerateMotivationalSentiment(tasks []models.Task, now time.Time) string {
	total := len(tasks)
	completed := 0
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			completed++
		}
	}
	rate := completionRate(completed, total)
	overdue := CountOverdue(tasks, now)

	switch {
	case rate >= 0.8:
		return SentimentCelebratory
	case rate >= 0.6:
		return SentimentEncouraging
	case overdue > 2:
		return SentimentUrgent
	case rate < 0.3:
		return SentimentMotivational
	default:
		return SentimentNeutral
	}
}

// PrioritizeTasks redistribui as prioridades das tarefas pendentes: o
// primeiro terço (mínimo 1) vira high, o terço seguinte medium e o resto
// low. A lista é ordenada por created_at (desempate por task_id) antes do
// corte, para que o resultado não dependa da ordem devolvida pelo backend.
// Devolve uma cópia; nada é persistido.
func PrioritizeTasks(pending []models.Task) []models.Task {
	out := make([]models.Task, len(pending))
	copy(out, pending)
	if len(out) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].TaskID < out[j].TaskID
	})

	n := len(out)
	highCount := int(math.Floor(0.33 * float64(n)))
	if highCount < 1 {
		highCount = 1
	}
	mediumCount := int(math.Floor(0.33 * float64(n)))
	if mediumCount < 1 {
		mediumCount = 1
	}

	for i := range out {
		switch {
		case i < highCount:
			out[i].Priority = models.PriorityHigh
		case i < highCount+mediumCount:
			out[i].Priority = models.PriorityMedium
		default:
			out[i].Priority = models.PriorityLow
		}
	}
	return out
}

func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

func roundPercent(rate float64) int {
	return int(math.Round(rate * 100))
}
