package sqlinline

const QSelectUserByID = `--sql fa4e55ee-596e-4eaa-be01-bb659f732cb5
select id, subject, email, name, locale, role, plan, created_at, updated_at
from users
where id = $1::uuid;
`

const QSelectUserByEmail = `--sql d274fe31-9ef1-476a-98e5-1333b82dbdc6
select id, subject, email, name, locale, role, plan, created_at, updated_at
from users
where lower(email) = lower($1::text);
`

const QUpsertUserBySubject = `--sql ddf457fb-b37e-4a5f-b2c5-110c5757e964
insert into users (id, subject, email, name, locale, role, plan)
values (coalesce(nullif($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7)
on conflict (subject) do update
set email = excluded.email,
    name = excluded.name,
    locale = excluded.locale,
    updated_at = now()
returning id, subject, email, name, locale, role, plan, created_at, updated_at;
`

const QUpdateUserPlan = `--sql 254e83e6-33e5-4ae0-8d13-5733868aceaa
update users
set plan = $2::text,
    plan_verified_at = now(),
    updated_at = now()
where id = $1::uuid
returning id, email, plan;
`

const QListPaidUsersForReconcile = `--sql 62048691-76e0-4c95-8bb1-700a6f7cfd44
select id, subject, email, name, locale, role, plan, created_at, updated_at
from users
where plan <> 'free'
  and (plan_verified_at is null or plan_verified_at < $1::timestamptz)
order by plan_verified_at asc nulls first
limit $2::int;
`
