package render

// DefaultCSS is the built-in stylesheet.
const DefaultCSS = `:root {
  --text: #1f2329;
  --muted: #646a73;
  --border: #dee0e3;
  --code-bg: #f5f6f7;
  --link: #3370ff;
}
body {
  margin: 0;
  color: var(--text);
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", "PingFang SC", "Hiragino Sans GB", "Microsoft YaHei", sans-serif;
  font-size: 16px;
  line-height: 1.7;
}
.document { max-width: 860px; margin: 0 auto; padding: 48px 24px; }
.document-title { font-size: 2.2em; margin-bottom: 0.8em; }
a { color: var(--link); text-decoration: none; }
a:hover { text-decoration: underline; }
p { margin: 0.4em 0; min-height: 1.7em; }
h1, h2, h3, h4, h5, h6 { line-height: 1.4; margin: 1.2em 0 0.5em; }
h6.heading-7 { font-size: 0.95em; }
h6.heading-8 { font-size: 0.9em; }
h6.heading-9 { font-size: 0.85em; color: var(--muted); }
.indent, .heading-children { padding-left: 2em; }
ul, ol { margin: 0.4em 0; padding-left: 1.6em; }
.list-nested { margin: 0; }
blockquote { margin: 0.6em 0; padding: 0 1em; border-left: 3px solid var(--border); color: var(--muted); }
pre { background: var(--code-bg); border-radius: 6px; padding: 12px 16px; overflow-x: auto; }
pre.wrap { white-space: pre-wrap; }
code { font-family: "SFMono-Regular", Menlo, Consolas, monospace; font-size: 0.9em; }
p code, li code, td code { background: var(--code-bg); border-radius: 3px; padding: 0 4px; }
hr { border: none; border-top: 1px solid var(--border); margin: 1.2em 0; }
.equation { text-align: center; margin: 0.8em 0; overflow-x: auto; }
.todo { display: flex; gap: 0.5em; align-items: baseline; }
.todo.done > span { color: var(--muted); text-decoration: line-through; }
.todo-children { padding-left: 1.6em; }
.callout { display: flex; gap: 0.6em; padding: 12px 16px; margin: 0.6em 0; border-radius: 8px; border: 1px solid var(--border); background: #f5f6f7; }
.callout-emoji { font-size: 1.2em; }
.callout-body { flex: 1; min-width: 0; }
.grid { display: flex; gap: 16px; margin: 0.6em 0; }
.grid-column { flex: 1; min-width: 0; }
.table { border-collapse: collapse; margin: 0.8em 0; width: 100%; }
.table td, .table th { border: 1px solid var(--border); padding: 6px 10px; vertical-align: top; }
.table th { background: #f5f6f7; font-weight: 600; }
.image, .board { margin: 0.8em 0; text-align: center; }
.image img, .board img { max-width: 100%; height: auto; }
figcaption { color: var(--muted); font-size: 0.9em; }
.file a::before { content: "📎 "; }
.iframe iframe { width: 100%; min-height: 420px; border: 1px solid var(--border); border-radius: 6px; }
.link-preview, .jira-issue { padding: 8px 12px; border: 1px solid var(--border); border-radius: 6px; margin: 0.6em 0; }
.mention-user { color: var(--link); }
.reminder { background: #e1eaff; border-radius: 4px; padding: 0 4px; }
.agenda-item { border-left: 3px solid var(--link); padding-left: 12px; margin: 0.8em 0; }
.agenda-item-title { font-weight: 600; }
.synced-block { border: 1px dashed var(--border); border-radius: 6px; padding: 4px 12px; }
.okr-objective { margin: 0.6em 0; }
.okr-title { font-weight: 600; }
.okr-key-result { padding-left: 1.6em; }
.unsupported-block { color: var(--muted); font-style: italic; border: 1px dashed var(--border); padding: 8px 12px; margin: 0.6em 0; }
.fallback-block { border-left-style: dashed; }
.text-color-1 { color: #d83931; }
.text-color-2 { color: #de7802; }
.text-color-3 { color: #dc9b04; }
.text-color-4 { color: #2ea121; }
.text-color-5 { color: #245bdb; }
.text-color-6 { color: #6425d0; }
.text-color-7 { color: #646a73; }
.bg-color-1, .callout-bg-1 { background: #fef1f1; }
.bg-color-2, .callout-bg-2 { background: #fef5eb; }
.bg-color-3, .callout-bg-3 { background: #fefbe6; }
.bg-color-4, .callout-bg-4 { background: #f0fbef; }
.bg-color-5, .callout-bg-5 { background: #f0f4ff; }
.bg-color-6, .callout-bg-6 { background: #f6f1fe; }
.bg-color-7, .callout-bg-7 { background: #f2f3f5; }
.bg-color-8, .callout-bg-8 { background: #fbbfbc; }
.bg-color-9, .callout-bg-9 { background: #fed4a4; }
.bg-color-10, .callout-bg-10 { background: #f8e6ab; }
.bg-color-11, .callout-bg-11 { background: #b7edb1; }
.bg-color-12, .callout-bg-12 { background: #bacefd; }
.bg-color-13, .callout-bg-13 { background: #cdb2fa; }
.bg-color-14, .callout-bg-14 { background: #dee0e3; }
.callout-border-1 { border-color: #f76964; }
.callout-border-2 { border-color: #ff9d4d; }
.callout-border-3 { border-color: #ffc60a; }
.callout-border-4 { border-color: #62d256; }
.callout-border-5 { border-color: #4e83fd; }
.callout-border-6 { border-color: #935af6; }
.callout-border-7 { border-color: #8f959e; }
`
