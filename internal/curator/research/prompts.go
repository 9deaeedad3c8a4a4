package research

// plannerSystemPrompt and writerSystemPrompt. The original loads these
// from prompts/planner.md and prompts/writer.md (prompts/__init__.py's
// load_prompt); those markdown files were not part of the retrieved
// source tree, so the prompt text below is original, written to match
// the structured-output contracts each node actually validates against
// (model.SearchPlan, model.ResearchAnswer).
const plannerSystemPrompt = `You are the planning stage of a research assistant.
Given a user query and optional entry context, break the query down into a
small number of focused sub-queries and decide which retrieval sources
(keyword, vector) are likely to find relevant material. Prefer fewer,
sharper sub-queries over many overlapping ones. Explain your reasoning
briefly in the rationale field.`

const writerSystemPrompt = `You are the writing stage of a research assistant.
Given a user query, optional entry context, and a list of retrieved
documents, write a grounded answer that cites only what the documents
support. Classify the answer as one of comparison, explanation,
recommendation, or summary. Set needsMoreInfo to true only if the
retrieved documents are clearly insufficient to answer the query, and in
that case list concrete follow-up sub-queries.`
