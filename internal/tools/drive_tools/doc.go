// Package drive_tools provides MCP tools for Google Drive.
//
// Available tools:
//   - drive_search_files: search by name keyword and file type
//   - drive_file_stats: file counts and sizes per category
//   - drive_get_file: metadata and preview link of one file
//   - drive_upload_file: upload a local file or base64 content (write)
//   - drive_delete_files: delete one or more files (write)
//
// Example tool usage:
//
//	drive_search_files({
//	  account: "work",
//	  keyword: "invoice",
//	  fileType: "pdf"
//	})
//
//	drive_delete_files({
//	  fileIds: ["1a2b", "3c4d"]
//	})
package drive_tools
