package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/models"
	"marketplace/statemachine"
)

// Health reports that the process is up
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Marketplace Ordering API",
	})
}

// GetStateMachineInfo documents the order lifecycle
func GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range models.Statuses {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	var cancellable []models.OrderStatus
	for _, s := range models.Statuses {
		if statemachine.CanCancel(s) {
			cancellable = append(cancellable, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"transitions":      statemachine.GetAllTransitions(),
		"terminal_states":  terminal,
		"cancellable_from": cancellable,
		"initial_state":    models.StatusPending,
		"description":      "Marketplace Order Lifecycle State Machine",
	})
}
