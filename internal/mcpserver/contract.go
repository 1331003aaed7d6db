package mcpserver

// MemoFormatContract describes how memos are stored so LLM consumers can
// write and read them correctly.
const MemoFormatContract = `# Memo Format

Memos live in daily Markdown journal files, one memo per line.

## Files

- One file per day inside the journal folder (default ` + "`" + `journals/` + "`" + `).
- The file name is the date: ` + "`" + `YYYY-MM-DD.md` + "`" + ` by default.
  ` + "`" + `YYYY_MM_DD.md` + "`" + ` and ` + "`" + `YYYYMMDD.md` + "`" + ` are also read.
- Lines that are not memos (headings, prose) are ignored and never modified.

## Lines

` + "```" + `markdown
- 09:15 #idea #work some free text content here
- #cy lunch was 28 yuan
` + "```" + `

1. A memo line starts with ` + "`" + `- ` + "`" + `.
2. **Timed form:** ` + "`" + `- HH:MM` + "`" + `, then tags, then the text. New memos always use
   this form with the current time.
3. **Tag-only form:** ` + "`" + `- #tag text` + "`" + ` without a time. It is only recognized when
   the first tag belongs to a configured quick-tag group.
4. **Tags** are ` + "`" + `#` + "`" + ` followed by any characters except whitespace and ` + "`" + `#` + "`" + `.
   Tags may appear anywhere in the line; they are removed from the content.
5. A memo is a single line. Do not include line breaks.

## Tools

- ` + "`" + `add_memo` + "`" + ` appends to today's file. Pass tags without ` + "`" + `#` + "`" + `.
  Set ` + "`" + `auto_tag` + "`" + ` to add tags from the keyword tables, e.g. amounts with a
  meal keyword get the meal tag.
- ` + "`" + `list_tags` + "`" + ` shows existing tags and quick-tag groups; reuse them.
`
