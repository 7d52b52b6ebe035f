// Package docs holds the OpenAPI document served under /swagger/.
// Keep it in step with the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/periods/{periodId}/employees/{employeeId}/steps": {
            "get": {
                "tags": [
                    "Step Approvals"
                ],
                "summary": "Get step status",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Employee ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.EmployeeStepStatus"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/periods/{periodId}/employees/{employeeId}/steps/{step}": {
            "put": {
                "tags": [
                    "Step Approvals"
                ],
                "summary": "Set step status",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Employee ID"
                    },
                    {
                        "type": "string",
                        "name": "step",
                        "in": "path",
                        "required": true,
                        "enum": [
                            "criteria",
                            "self",
                            "primary"
                        ]
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "New status",
                        "schema": {
                            "$ref": "#/definitions/handlers.StepStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.StepApproval"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/periods/{periodId}/employees/{employeeId}/secondary/{evaluatorId}": {
            "put": {
                "tags": [
                    "Step Approvals"
                ],
                "summary": "Set secondary step status",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Employee ID"
                    },
                    {
                        "type": "string",
                        "name": "evaluatorId",
                        "in": "path",
                        "required": true,
                        "description": "Secondary evaluator ID"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "New status",
                        "schema": {
                            "$ref": "#/definitions/handlers.StepStatusRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.SecondaryStepApproval"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/periods/{periodId}/employees/{employeeId}/cascade/self": {
            "post": {
                "tags": [
                    "Step Approvals"
                ],
                "summary": "Approve self step and cascade",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Employee ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.CascadeResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/periods/{periodId}/employees/{employeeId}/cascade/primary": {
            "post": {
                "tags": [
                    "Step Approvals"
                ],
                "summary": "Approve primary step and cascade",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Employee ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.CascadeResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/periods/{periodId}/step-approvals/export": {
            "get": {
                "tags": [
                    "Step Approvals"
                ],
                "summary": "Export step approvals",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/revision-requests": {
            "post": {
                "tags": [
                    "Revision Requests"
                ],
                "summary": "Create revision request",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Revision request",
                        "schema": {
                            "$ref": "#/definitions/handlers.CreateRevisionRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/models.RevisionRequest"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/revision-requests/me": {
            "get": {
                "tags": [
                    "Revision Requests"
                ],
                "summary": "List my open revision requests",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.RevisionRequest"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/revision-requests/{id}": {
            "get": {
                "tags": [
                    "Revision Requests"
                ],
                "summary": "Get revision request",
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Revision request ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.RevisionRequest"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/revision-requests/{id}/read": {
            "post": {
                "tags": [
                    "Revision Requests"
                ],
                "summary": "Mark revision request as read",
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Revision request ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/revision-requests/{id}/respond": {
            "post": {
                "tags": [
                    "Revision Requests"
                ],
                "summary": "Respond to revision request",
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Revision request ID"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Response",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespondRevisionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.RevisionRequest"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/self-evaluations/{id}/{action}": {
            "post": {
                "tags": [
                    "Self-Evaluations"
                ],
                "summary": "Submit or reset a self-evaluation",
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Self-evaluation ID"
                    },
                    {
                        "type": "string",
                        "name": "action",
                        "in": "path",
                        "required": true,
                        "enum": [
                            "submit-to-evaluator",
                            "submit-to-manager",
                            "reset-to-evaluator",
                            "reset-to-manager"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.SubmissionResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/periods/{periodId}/employees/{employeeId}/self-evaluations/submit-all": {
            "post": {
                "tags": [
                    "Self-Evaluations"
                ],
                "summary": "Submit all self-evaluations",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Employee ID"
                    },
                    {
                        "type": "string",
                        "name": "target",
                        "in": "query",
                        "required": false,
                        "description": "Gate",
                        "enum": [
                            "evaluator",
                            "manager"
                        ]
                    },
                    {
                        "type": "string",
                        "name": "projectId",
                        "in": "query",
                        "required": false,
                        "description": "Restrict to the WBS items of this project"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.SelfBulkResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/periods/{periodId}/employees/{employeeId}/self-evaluations/reset-all": {
            "post": {
                "tags": [
                    "Self-Evaluations"
                ],
                "summary": "Reset all self-evaluations",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Employee ID"
                    },
                    {
                        "type": "string",
                        "name": "target",
                        "in": "query",
                        "required": false,
                        "description": "Gate",
                        "enum": [
                            "evaluator",
                            "manager"
                        ]
                    },
                    {
                        "type": "string",
                        "name": "projectId",
                        "in": "query",
                        "required": false,
                        "description": "Restrict to the WBS items of this project"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.SelfBulkResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/downward-evaluations/{id}/submit": {
            "post": {
                "tags": [
                    "Downward Evaluations"
                ],
                "summary": "Submit a downward evaluation",
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Downward evaluation ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.SubmissionResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/downward-evaluations/{id}/reset": {
            "post": {
                "tags": [
                    "Downward Evaluations"
                ],
                "summary": "Reset a downward evaluation",
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Downward evaluation ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.SubmissionResult"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/periods/{periodId}/evaluators/{evaluatorId}/evaluatees/{employeeId}/downward/{type}/submit-all": {
            "post": {
                "tags": [
                    "Downward Evaluations"
                ],
                "summary": "Submit all downward evaluations",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "evaluatorId",
                        "in": "path",
                        "required": true,
                        "description": "Evaluator ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Evaluatee ID"
                    },
                    {
                        "type": "string",
                        "name": "type",
                        "in": "path",
                        "required": true,
                        "enum": [
                            "primary",
                            "secondary"
                        ]
                    },
                    {
                        "type": "string",
                        "name": "projectId",
                        "in": "query",
                        "required": false,
                        "description": "Restrict to the WBS items of this project"
                    },
                    {
                        "type": "boolean",
                        "name": "approveAll",
                        "in": "query",
                        "required": false,
                        "description": "Submit items without content too"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.DownwardBulkResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/periods/{periodId}/evaluators/{evaluatorId}/evaluatees/{employeeId}/downward/{type}/reset-all": {
            "post": {
                "tags": [
                    "Downward Evaluations"
                ],
                "summary": "Reset all downward evaluations",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "evaluatorId",
                        "in": "path",
                        "required": true,
                        "description": "Evaluator ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Evaluatee ID"
                    },
                    {
                        "type": "string",
                        "name": "type",
                        "in": "path",
                        "required": true,
                        "enum": [
                            "primary",
                            "secondary"
                        ]
                    },
                    {
                        "type": "string",
                        "name": "projectId",
                        "in": "query",
                        "required": false,
                        "description": "Restrict to the WBS items of this project"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.DownwardBulkResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/periods/{periodId}/employees/{employeeId}/activity-logs": {
            "get": {
                "tags": [
                    "Activity"
                ],
                "summary": "List activity logs",
                "parameters": [
                    {
                        "type": "string",
                        "name": "periodId",
                        "in": "path",
                        "required": true,
                        "description": "Period ID"
                    },
                    {
                        "type": "string",
                        "name": "employeeId",
                        "in": "path",
                        "required": true,
                        "description": "Employee ID"
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "description": "Page size"
                    },
                    {
                        "type": "integer",
                        "name": "offset",
                        "in": "query",
                        "required": false,
                        "description": "Offset"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.ActivityLogResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Health check",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.HealthResponse"
                        }
                    }
                },
                "produces": [
                    "application/json"
                ]
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "field": {
                    "type": "string"
                }
            }
        },
        "handlers.StepStatusRequest": {
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "status": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "approved",
                        "revision_requested"
                    ]
                },
                "revision_comment": {
                    "type": "string"
                }
            }
        },
        "handlers.CreateRevisionRequest": {
            "type": "object",
            "required": [
                "period_id",
                "employee_id",
                "step",
                "comment",
                "recipients"
            ],
            "properties": {
                "period_id": {
                    "type": "string"
                },
                "employee_id": {
                    "type": "string"
                },
                "step": {
                    "type": "string",
                    "enum": [
                        "criteria",
                        "self",
                        "primary",
                        "secondary"
                    ]
                },
                "comment": {
                    "type": "string"
                },
                "recipients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.RevisionRecipient"
                    }
                }
            }
        },
        "handlers.RespondRevisionRequest": {
            "type": "object",
            "properties": {
                "comment": {
                    "type": "string"
                }
            }
        },
        "handlers.ActivityLogResponse": {
            "type": "object",
            "properties": {
                "logs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.ActivityLog"
                    }
                },
                "limit": {
                    "type": "integer"
                },
                "offset": {
                    "type": "integer"
                }
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                },
                "checks": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "models.RevisionRecipient": {
            "type": "object",
            "required": [
                "recipient_id",
                "recipient_type"
            ],
            "properties": {
                "recipient_id": {
                    "type": "string"
                },
                "recipient_type": {
                    "type": "string",
                    "enum": [
                        "evaluatee",
                        "primary_evaluator",
                        "secondary_evaluator"
                    ]
                }
            }
        },
        "models.RevisionRequestRecipient": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "revision_request_id": {
                    "type": "string"
                },
                "recipient_id": {
                    "type": "string"
                },
                "recipient_type": {
                    "type": "string",
                    "enum": [
                        "evaluatee",
                        "primary_evaluator",
                        "secondary_evaluator"
                    ]
                },
                "is_read": {
                    "type": "boolean"
                },
                "read_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "is_completed": {
                    "type": "boolean"
                },
                "response_comment": {
                    "type": "string"
                },
                "completed_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.RevisionRequest": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "period_id": {
                    "type": "string"
                },
                "employee_id": {
                    "type": "string"
                },
                "step": {
                    "type": "string",
                    "enum": [
                        "criteria",
                        "self",
                        "primary",
                        "secondary"
                    ]
                },
                "comment": {
                    "type": "string"
                },
                "requested_by": {
                    "type": "string"
                },
                "is_completed": {
                    "type": "boolean"
                },
                "completed_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "recipients": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.RevisionRequestRecipient"
                    }
                }
            }
        },
        "models.StepApproval": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "period_id": {
                    "type": "string"
                },
                "employee_id": {
                    "type": "string"
                },
                "step": {
                    "type": "string",
                    "enum": [
                        "criteria",
                        "self",
                        "primary",
                        "secondary"
                    ]
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "approved",
                        "revision_requested"
                    ]
                },
                "revision_comment": {
                    "type": "string"
                },
                "updated_by": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.SecondaryStepApproval": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "period_id": {
                    "type": "string"
                },
                "employee_id": {
                    "type": "string"
                },
                "evaluator_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "approved",
                        "revision_requested"
                    ]
                },
                "revision_comment": {
                    "type": "string"
                },
                "updated_by": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.SecondaryStepStatus": {
            "type": "object",
            "properties": {
                "evaluator_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "approved",
                        "revision_requested"
                    ]
                },
                "revision_comment": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.EmployeeStepStatus": {
            "type": "object",
            "properties": {
                "period_id": {
                    "type": "string"
                },
                "employee_id": {
                    "type": "string"
                },
                "criteria": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "approved",
                        "revision_requested"
                    ]
                },
                "self": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "approved",
                        "revision_requested"
                    ]
                },
                "primary": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "approved",
                        "revision_requested"
                    ]
                },
                "primary_evaluator_id": {
                    "type": "string"
                },
                "secondary": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.SecondaryStepStatus"
                    }
                }
            }
        },
        "models.SubmissionResult": {
            "type": "object",
            "properties": {
                "evaluation_id": {
                    "type": "string"
                },
                "changed": {
                    "type": "boolean"
                },
                "version": {
                    "type": "integer"
                },
                "state": {
                    "type": "boolean"
                }
            }
        },
        "models.SelfEvaluationOutcome": {
            "type": "object",
            "properties": {
                "evaluation_id": {
                    "type": "string"
                },
                "wbs_item_id": {
                    "type": "string"
                },
                "submitted_to_evaluator": {
                    "type": "boolean"
                },
                "submitted_to_manager": {
                    "type": "boolean"
                }
            }
        },
        "models.FailedEvaluation": {
            "type": "object",
            "properties": {
                "evaluation_id": {
                    "type": "string"
                },
                "wbs_item_id": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "models.SelfBulkResult": {
            "type": "object",
            "properties": {
                "employee_id": {
                    "type": "string"
                },
                "period_id": {
                    "type": "string"
                },
                "target": {
                    "type": "string",
                    "enum": [
                        "evaluator",
                        "manager"
                    ]
                },
                "submitted_count": {
                    "type": "integer"
                },
                "skipped_count": {
                    "type": "integer"
                },
                "failed_count": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                },
                "completed_evaluations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.SelfEvaluationOutcome"
                    }
                },
                "skipped_evaluations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.SelfEvaluationOutcome"
                    }
                },
                "failed_evaluations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.FailedEvaluation"
                    }
                }
            }
        },
        "models.FailedItem": {
            "type": "object",
            "properties": {
                "evaluation_id": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "models.DownwardBulkResult": {
            "type": "object",
            "properties": {
                "evaluator_id": {
                    "type": "string"
                },
                "evaluatee_id": {
                    "type": "string"
                },
                "period_id": {
                    "type": "string"
                },
                "evaluation_type": {
                    "type": "string",
                    "enum": [
                        "primary",
                        "secondary"
                    ]
                },
                "submitted_count": {
                    "type": "integer"
                },
                "skipped_count": {
                    "type": "integer"
                },
                "failed_count": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                },
                "submitted_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "skipped_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "failed_items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.FailedItem"
                    }
                }
            }
        },
        "models.SecondaryCascadeResult": {
            "type": "object",
            "properties": {
                "evaluator_id": {
                    "type": "string"
                },
                "approved": {
                    "type": "boolean"
                },
                "submission": {
                    "$ref": "#/definitions/models.DownwardBulkResult"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "models.CascadeResult": {
            "type": "object",
            "properties": {
                "period_id": {
                    "type": "string"
                },
                "employee_id": {
                    "type": "string"
                },
                "self_approved": {
                    "type": "boolean"
                },
                "primary_approved": {
                    "type": "boolean"
                },
                "primary_evaluator_id": {
                    "type": "string"
                },
                "primary_submission": {
                    "$ref": "#/definitions/models.DownwardBulkResult"
                },
                "primary_error": {
                    "type": "string"
                },
                "secondary": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.SecondaryCascadeResult"
                    }
                },
                "secondary_error": {
                    "type": "string"
                }
            }
        },
        "models.ActivityLog": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "period_id": {
                    "type": "string"
                },
                "employee_id": {
                    "type": "string"
                },
                "activity_type": {
                    "type": "string"
                },
                "action": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "related_entity_type": {
                    "type": "string"
                },
                "related_entity_id": {
                    "type": "string"
                },
                "performed_by": {
                    "type": "string"
                },
                "metadata": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Eval Flow API",
	Description:      "Step approvals, revision requests and evaluation submissions of the performance review workflow",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
