// Package http provides HTTP handlers and middleware for the hospital
// administration API.
//
// The router exposes the following endpoints:
//   - POST /auth/login: verifies an employee id and password and issues a
//     bearer token. Body: {"employee_id","password"}. Response:
//     {"access_token","token_type","expires_in","user"}.
//   - POST /auth/refresh: re-issues a token for the account referenced by the
//     presented bearer token. POST /auth/logout acknowledges a logout; tokens
//     are stateless so the client simply discards its copy. GET /auth/me
//     returns the authenticated caller's account.
//   - GET /users, POST /users, GET/PUT/DELETE /users/{id},
//     PUT /users/{id}/password: staff account management exchanging the
//     `identityDTO` payload defined in auth_handler.go. Mutations require an
//     administrator; listing requires a management role; accounts are always
//     readable by their owner and passwords changeable only by their owner.
//   - GET /departments, POST /departments, GET/PUT/DELETE /departments/{id}:
//     department catalog endpoints exchanging the `departmentDTO` payload
//     defined in department_handler.go. Reads are open to authenticated staff
//     while mutations require an administrator. `?active=true` narrows the
//     listing to Active departments.
//   - GET /reports/monthly, GET/PUT/DELETE /reports/monthly/{year}/{month},
//     POST .../submit, POST .../approve, GET /reports/monthly/statistics/{year}:
//     monthly ward report lifecycle exchanging the `reportDTO` payload defined
//     in report_handler.go. Approval requires an approval-grade role and
//     deletion a management role.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
