package mcpserver

// FilenameRules describes the naming policy LLM consumers must follow when
// creating or renaming files.
const FilenameRules = `# txtshelf Filename Rules

Every file in txtshelf lives in one flat directory and is named ` + "`" + `<token>.txt` + "`" + `.

## Rules

1. **Tokens** are one or more of ` + "`" + `A-Z a-z 0-9 _ -` + "`" + `. Nothing else is accepted:
   no dots, slashes, backslashes, spaces or non-Latin letters.
2. **Do not add the extension.** ` + "`" + `create_file` + "`" + ` and ` + "`" + `rename_file` + "`" + ` take the bare token;
   ` + "`" + `.txt` + "`" + ` is appended for you. ` + "`" + `notes` + "`" + ` becomes ` + "`" + `notes.txt` + "`" + `, while ` + "`" + `notes.txt` + "`" + ` is rejected.
3. **Existing files are referenced by their full name** including ` + "`" + `.txt` + "`" + `
   (` + "`" + `read_file` + "`" + `, ` + "`" + `delete_file` + "`" + `, the source of ` + "`" + `rename_file` + "`" + `).
4. **Names are unique.** Creating or renaming onto a name that is already taken fails;
   nothing is ever overwritten.
5. **Content is opaque text.** It is stored exactly as given and never edited in place;
   rename keeps it unchanged.

## Errors

| Error | Meaning |
|---|---|
| filename is required | the token was empty |
| only alphanumeric, underscore, and hyphen are allowed | the token has an illegal character |
| a file with the same name already exists | pick another name |
| file not found | no file with that full name |
| permission denied | the server cannot access the file |
`
