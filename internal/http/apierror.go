package http

import "github.com/gin-gonic/gin"

// Identificadores estables para fallos de autenticación/autorización.
const (
	identMissingToken = "0x001200"
	identInvalidToken = "0x001201"
	identForbidden    = "0x001300"
)

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Identifier string `json:"identifier"`
}

// failedEnvelope es la forma de respuesta de los guards de ruta:
// {status:"FAILED", error:{statusCode, message, identifier}}.
type failedEnvelope struct {
	Status string    `json:"status"`
	Error  errorBody `json:"error"`
}

func respondFailed(c *gin.Context, statusCode int, message, identifier string) {
	c.JSON(statusCode, failedEnvelope{
		Status: "FAILED",
		Error: errorBody{
			StatusCode: statusCode,
			Message:    message,
			Identifier: identifier,
		},
	})
	c.Abort()
}
