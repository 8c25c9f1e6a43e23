package emitter

// preludeSource is prepended to every emitted program. It defines the five
// runtime helpers the lowerer references by name but never defines itself
// (control_flow.go's property-vs-call residual, quasiquote splicing,
// object-rest destructuring, and `range`): __hql_get, __hql_getNumeric,
// __hql_range, __hql_concat, __hql_omit. None of it carries a source
// position, so it contributes no mapping entries; its line count is what
// shifts every later mapping's generated line by a constant amount (S8).
const preludeSource = `function __hql_get(obj, key) {
  return obj == null ? undefined : obj[key];
}
function __hql_getNumeric(obj, index) {
  return obj == null ? undefined : obj[index];
}
function __hql_range(start, end, step) {
  if (end === undefined) {
    end = start;
    start = 0;
  }
  step = step === undefined ? 1 : step;
  const out = [];
  if (step > 0) {
    for (let i = start; i < end; i += step) out.push(i);
  } else if (step < 0) {
    for (let i = start; i > end; i += step) out.push(i);
  }
  return out;
}
function __hql_concat(...parts) {
  return parts.reduce((acc, part) => acc.concat(part), []);
}
function __hql_omit(obj, keys) {
  const result = {};
  for (const key of Object.keys(obj)) {
    if (!keys.includes(key)) result[key] = obj[key];
  }
  return result;
}
`
