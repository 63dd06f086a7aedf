// Package calendar_tools provides MCP (Model Context Protocol) tools for Google Calendar operations.
//
// calendar_list_events is always available. calendar_schedule_meeting and
// calendar_delete_event change the calendar and are only registered in yolo
// mode. Meeting times are given as a date and HH:MM times in the configured
// time zone.
package calendar_tools
