/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package codegen

// Chat is a code generation conversation. Each message produces a new
// version of the generated project.
type Chat struct {
	ID            string   `json:"id"`
	Object        string   `json:"object,omitempty"`
	Name          string   `json:"name,omitempty"`
	WebURL        string   `json:"webUrl,omitempty"`
	ProjectID     string   `json:"projectId,omitempty"`
	LatestVersion *Version `json:"latestVersion,omitempty"`
}

// Version is one generated revision of a chat's project.
type Version struct {
	ID      string `json:"id"`
	Status  string `json:"status,omitempty"`
	DemoURL string `json:"demoUrl,omitempty"`
	Files   []File `json:"files,omitempty"`
}

// File is a generated source file.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Locked  bool   `json:"locked,omitempty"`
}

// Project groups the chats of one application.
type Project struct {
	ID         string `json:"id"`
	Object     string `json:"object,omitempty"`
	Name       string `json:"name,omitempty"`
	WebURL     string `json:"webUrl,omitempty"`
	Privacy    string `json:"privacy,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
	VercelID   string `json:"vercelProjectId,omitempty"`
	ChatsCount int    `json:"chatsCount,omitempty"`
}

// DeleteResult reports the outcome of a project deletion.
type DeleteResult struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type createChatRequest struct {
	Message     string `json:"message"`
	System      string `json:"system,omitempty"`
	ChatPrivacy string `json:"chatPrivacy,omitempty"`
}

type sendMessageRequest struct {
	Message string `json:"message"`
}
