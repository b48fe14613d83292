// Package http implements the HTTP handlers of the dashboard service.
// Handlers are a thin layer between chi routing and the services: they parse
// and validate the request, call the service and write the response.
//
// # Responses
//
// Successful responses use a JSON envelope:
//
//	{"status": "success", "data": ...}
//
// Errors follow RFC 7807 Problem Details and are written by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Validation Failed",
//	    "status": 400,
//	    "detail": "region_top must be at least 5",
//	    "instance": "/api/dashboard/view"
//	}
//
// A failed dataset load answers 503 with the loader's diagnostic. A filter
// combination that matches no records is not an error: the view is returned
// with no_data set.
//
// # WebSocket
//
// GET /ws/dashboard/{id} upgrades to the session stream served by the
// websocket package. Unknown sessions are rejected with a 404 before the
// upgrade.
package http
