// Copyright (C) 2026 the codepilot authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/core"
	corecat "github.com/u-root/u-root/pkg/core/cat"
	corecp "github.com/u-root/u-root/pkg/core/cp"
	corels "github.com/u-root/u-root/pkg/core/ls"
	coremkdir "github.com/u-root/u-root/pkg/core/mkdir"
	coremv "github.com/u-root/u-root/pkg/core/mv"
	corerm "github.com/u-root/u-root/pkg/core/rm"
)

// File management tools backed by u-root core commands instead of
// shelling out.
func registerFileManagementTools(register func(Tool)) {
	register(&ToolDefinition{
		NameValue:        "ls",
		DescriptionValue: "List directory contents",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "path", Type: TypeString, Description: "Directory path to list (default: working directory)"},
			{Name: "all", Type: TypeBool, Description: "Include hidden files"},
			{Name: "long", Type: TypeBool, Description: "Use long listing format"},
		}},
		ExecuteFunc: listDirectory,
	})

	register(&ToolDefinition{
		NameValue:        "cat",
		DescriptionValue: "Print the contents of a file",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "path", Type: TypeString, Required: true, Description: "File path to print"},
		}},
		ExecuteFunc: catFile,
	})

	register(&ToolDefinition{
		NameValue:        "copy_path",
		DescriptionValue: "Copy a file or directory",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "source", Type: TypeString, Required: true, Description: "Source path"},
			{Name: "destination", Type: TypeString, Required: true, Description: "Destination path"},
			{Name: "recursive", Type: TypeBool, Description: "Copy directories recursively"},
		}},
		ExecuteFunc: copyPath,
	})

	register(&ToolDefinition{
		NameValue:        "move_path",
		DescriptionValue: "Move or rename a file or directory",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "source", Type: TypeString, Required: true, Description: "Source path"},
			{Name: "destination", Type: TypeString, Required: true, Description: "Destination path"},
		}},
		ExecuteFunc: movePath,
	})

	register(&ToolDefinition{
		NameValue:        "delete_path",
		DescriptionValue: "Delete a file or directory",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "path", Type: TypeString, Required: true, Description: "Path to delete"},
			{Name: "recursive", Type: TypeBool, Description: "Delete directories recursively"},
		}},
		ExecuteFunc: deletePath,
	})

	register(&ToolDefinition{
		NameValue:        "mkdir",
		DescriptionValue: "Create a directory",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "path", Type: TypeString, Required: true, Description: "Directory path to create"},
			{Name: "parents", Type: TypeBool, Description: "Create parent directories as needed"},
		}},
		ExecuteFunc: makeDirectory,
	})
}

// runCoreCommand executes a u-root core command with captured output.
func runCoreCommand(ctx context.Context, workdir string, cmd core.Command, args []string) (string, error) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.SetIO(strings.NewReader(""), &stdout, &stderr)
	cmd.SetWorkingDir(workdir)

	if err := cmd.RunContext(ctx, args...); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%v: %s", err, errMsg)
		}
		return "", err
	}
	return stdout.String(), nil
}

func listDirectory(ctx context.Context, sess *Session, args Args) (*Output, error) {
	path := sess.Workdir()
	if args.Has("path") {
		resolved, err := resolveToolPath(sess, args.String("path"))
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	if err := requireExists(path); err != nil {
		return nil, err
	}

	var cmdArgs []string
	if args.Bool("all") {
		cmdArgs = append(cmdArgs, "-a")
	}
	if args.Bool("long") {
		cmdArgs = append(cmdArgs, "-l")
	}
	cmdArgs = append(cmdArgs, path)

	out, err := runCoreCommand(ctx, sess.Workdir(), corels.New(), cmdArgs)
	if err != nil {
		return nil, err
	}
	return Text(out), nil
}

func catFile(ctx context.Context, sess *Session, args Args) (*Output, error) {
	resolved, err := resolveToolPath(sess, args.String("path"))
	if err != nil {
		return nil, err
	}
	if err := requireExists(resolved); err != nil {
		return nil, err
	}

	out, err := runCoreCommand(ctx, sess.Workdir(), corecat.New(), []string{resolved})
	if err != nil {
		return nil, err
	}
	return Text(out), nil
}

func copyPath(ctx context.Context, sess *Session, args Args) (*Output, error) {
	source, err := resolveToolPath(sess, args.String("source"))
	if err != nil {
		return nil, err
	}
	destination, err := resolveToolPath(sess, args.String("destination"))
	if err != nil {
		return nil, err
	}
	if err := requireExists(source); err != nil {
		return nil, err
	}

	var cmdArgs []string
	if args.Bool("recursive") {
		cmdArgs = append(cmdArgs, "-r")
	}
	cmdArgs = append(cmdArgs, source, destination)

	if _, err := runCoreCommand(ctx, sess.Workdir(), corecp.New(), cmdArgs); err != nil {
		return nil, err
	}
	return Text(fmt.Sprintf("Copied %s to %s", source, destination)), nil
}

func movePath(ctx context.Context, sess *Session, args Args) (*Output, error) {
	source, err := resolveToolPath(sess, args.String("source"))
	if err != nil {
		return nil, err
	}
	destination, err := resolveToolPath(sess, args.String("destination"))
	if err != nil {
		return nil, err
	}
	if err := requireExists(source); err != nil {
		return nil, err
	}

	if _, err := runCoreCommand(ctx, sess.Workdir(), coremv.New(), []string{source, destination}); err != nil {
		return nil, err
	}
	if sess.OpenFile() == source {
		// The open file moved out from under the window; point the
		// session at its new location.
		sess.SetOpenFile(destination, sess.TotalLines())
	}
	return Text(fmt.Sprintf("Moved %s to %s", source, destination)), nil
}

func deletePath(ctx context.Context, sess *Session, args Args) (*Output, error) {
	resolved, err := resolveToolPath(sess, args.String("path"))
	if err != nil {
		return nil, err
	}
	if err := requireExists(resolved); err != nil {
		return nil, err
	}

	var cmdArgs []string
	if args.Bool("recursive") {
		cmdArgs = append(cmdArgs, "-r")
	}
	cmdArgs = append(cmdArgs, resolved)

	if _, err := runCoreCommand(ctx, sess.Workdir(), corerm.New(), cmdArgs); err != nil {
		return nil, err
	}
	return Text(fmt.Sprintf("Deleted %s", resolved)), nil
}

func makeDirectory(ctx context.Context, sess *Session, args Args) (*Output, error) {
	resolved, err := resolveToolPath(sess, args.String("path"))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(resolved); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathAlreadyExists, resolved)
	}

	var cmdArgs []string
	if args.Bool("parents") {
		cmdArgs = append(cmdArgs, "-p")
	}
	cmdArgs = append(cmdArgs, resolved)

	if _, err := runCoreCommand(ctx, sess.Workdir(), coremkdir.New(), cmdArgs); err != nil {
		return nil, err
	}
	return Text(fmt.Sprintf("Created directory %s", resolved)), nil
}

func requireExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return nil
}
