// Callscope - VoIP Call Leg Analytics and Media Quality Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/callscope

// Package main provides the Callscope HTTP server
//
// Callscope API reconstructs SIP call legs and RTP/RTCP media legs
// from stored capture reports and manages the host inventory.
//
// @title Callscope API
// @version 1.0
// @description VoIP call leg analytics and media quality monitoring
// @description
// @description ## Features
// @description
// @description - **Media session reconstruction**: per-leg RTP/RTCP quality blocks over a fixed block grid
// @description - **Session details**: SIP signaling summaries with host name resolution
// @description - **Host inventory**: CRUD plus bulk JSON import
// @description - **Report ingest**: direct or durable (WAL + NATS JetStream) ingest paths
// @description - **Real-time feed**: WebSocket notifications for ingested reports
// @description
// @description ## Authentication
// @description
// @description Most endpoints require authentication (JWT cookie/bearer, Basic, or OIDC bearer
// @description depending on AUTH_MODE). Use `/api/v1/auth/login` to obtain a JWT.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-30T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/callscope
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8860
// @BasePath /
//
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name auth_token
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main
