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

import "context"

func registerNavigationTools(register func(Tool)) {
	register(&ToolDefinition{
		NameValue:        "open",
		DescriptionValue: "Open the file at the given path. If line is provided, the window is moved to include that line",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "path", Type: TypeString, Required: true, Description: "Path to the file to open"},
			{Name: "line", Type: TypeInt, Description: "Line number to navigate to after opening"},
		}},
		ExecuteFunc:  openFile,
		ValidateFunc: ChainValidation(RequireNonBlank("path"), RequirePositive("line")),
	})

	register(&ToolDefinition{
		NameValue:        "goto",
		DescriptionValue: "Move the window of the open file to show the given line",
		SchemaValue: Schema{Parameters: []Parameter{
			{Name: "line", Type: TypeInt, Required: true, Description: "Line number to navigate to"},
		}},
		ExecuteFunc:  gotoLine,
		ValidateFunc: RequirePositive("line"),
	})

	register(&ToolDefinition{
		NameValue:        "scroll_up",
		DescriptionValue: "Move the window up by the window size",
		SchemaValue:      Schema{},
		ExecuteFunc:      scrollBy(-1),
	})

	register(&ToolDefinition{
		NameValue:        "scroll_down",
		DescriptionValue: "Move the window down by the window size",
		SchemaValue:      Schema{},
		ExecuteFunc:      scrollBy(1),
	})
}

func openFile(ctx context.Context, sess *Session, args Args) (*Output, error) {
	resolved, err := resolveToolPath(sess, args.String("path"))
	if err != nil {
		return nil, err
	}
	lines, err := readLines(resolved)
	if err != nil {
		return nil, err
	}
	sess.SetOpenFile(resolved, len(lines))

	if args.Has("line") {
		if err := sess.GotoLine(args.Int("line")); err != nil {
			return nil, err
		}
	}

	window, err := showWindow(sess)
	if err != nil {
		return nil, err
	}
	return Text(windowHeader(sess) + window), nil
}

func gotoLine(ctx context.Context, sess *Session, args Args) (*Output, error) {
	if sess.OpenFile() == "" {
		return nil, ErrNoOpenFile
	}
	// Refresh line count before the bounds check so edits made outside
	// the session don't leave goto working against stale bounds.
	lines, err := readLines(sess.OpenFile())
	if err != nil {
		return nil, err
	}
	sess.Refresh(len(lines))

	if err := sess.GotoLine(args.Int("line")); err != nil {
		return nil, err
	}
	window, err := showWindow(sess)
	if err != nil {
		return nil, err
	}
	return Text(windowHeader(sess) + window), nil
}

func scrollBy(direction int) ExecutorFunc {
	return func(ctx context.Context, sess *Session, args Args) (*Output, error) {
		if sess.OpenFile() == "" {
			return nil, ErrNoOpenFile
		}
		sess.ShiftWindow(direction * sess.WindowSize())
		window, err := showWindow(sess)
		if err != nil {
			return nil, err
		}
		return Text(windowHeader(sess) + window), nil
	}
}
