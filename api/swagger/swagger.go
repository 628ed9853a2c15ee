package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Faculty Evaluation API",
        "description": "REST API for faculty performance evaluation: authentication, evaluation submission, aggregation reports and report exports.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Authentication and credential rotation"},
        {"name": "Periods", "description": "Evaluation period administration"},
        {"name": "Subjects", "description": "Subject catalog by department"},
        {"name": "Faculty", "description": "Faculty roster"},
        {"name": "Enrollments", "description": "Student enrollments and faculty subject assignments"},
        {"name": "Criteria", "description": "Evaluation rubric"},
        {"name": "Evaluations", "description": "Student and self evaluation submission"},
        {"name": "Reports", "description": "Aggregation reports and exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the current refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Logged out"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change the current password",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Password changed, sessions revoked"},
                    "400": {"description": "Policy violation"},
                    "403": {"description": "Current password incorrect"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "User info"}
                }
            }
        },
        "/periods/active": {
            "get": {
                "tags": ["Periods"],
                "summary": "Currently active evaluation period",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Active period"},
                    "409": {"description": "No active period"}
                }
            }
        },
        "/periods/gate": {
            "get": {
                "tags": ["Periods"],
                "summary": "Submission window state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Gate state"}
                }
            }
        },
        "/periods": {
            "get": {
                "tags": ["Periods"],
                "summary": "List evaluation periods",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Periods"}
                }
            },
            "post": {
                "tags": ["Periods"],
                "summary": "Create an evaluation period",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/periods/{id}/activate": {
            "put": {
                "tags": ["Periods"],
                "summary": "Activate a period, deactivating any other",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Activated"}
                }
            }
        },
        "/periods/{id}/deactivate": {
            "put": {
                "tags": ["Periods"],
                "summary": "Deactivate a period",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Deactivated"}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects for a department",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Subjects"}
                }
            }
        },
        "/faculty": {
            "get": {
                "tags": ["Faculty"],
                "summary": "List faculty with pagination and filters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Faculty page"}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List the caller's enrollments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Enrollments"}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in a subject",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/criteria": {
            "get": {
                "tags": ["Criteria"],
                "summary": "List active evaluation criteria",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Criteria"}
                }
            }
        },
        "/evaluations": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Submit a student evaluation",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Submitted"},
                    "403": {"description": "Not enrolled"},
                    "409": {"description": "Duplicate or period closed"}
                }
            }
        },
        "/evaluations/self": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Submit a faculty self-evaluation",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Submitted"},
                    "409": {"description": "Duplicate"}
                }
            }
        },
        "/reports/faculty/{id}/summary": {
            "get": {
                "tags": ["Reports"],
                "summary": "Aggregated faculty summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Summary"}
                }
            }
        },
        "/reports/department": {
            "get": {
                "tags": ["Reports"],
                "summary": "Department report scoped to the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Report"}
                }
            }
        },
        "/reports/department/export": {
            "post": {
                "tags": ["Reports"],
                "summary": "Request an asynchronous report export",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Export queued"}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export job status",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Status"}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export by signed token",
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "redirect": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
